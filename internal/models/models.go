package models

// CreateSaleRequest - модель для создания продажи
type CreateSaleRequest struct {
	BuyerName  string   `json:"buyer_name" binding:"required"`
	BuyerPhone string   `json:"buyer_phone" binding:"required"`
	StudentID  *string  `json:"student_id,omitempty"`
	Seats      []string `json:"seats" binding:"required,min=1"`
	TotalValue int64    `json:"total_value" binding:"min=0"`
	SaleDate   *int64   `json:"sale_date,omitempty"` // unix millis, server time when absent
}

// ListSalesResponse - список продаж
type ListSalesResponse []Sale

// SearchSalesParams - параметры поиска продаж
type SearchSalesParams struct {
	Query     string
	Date      string // YYYY-MM-DD
	StudentID string
	Page      int
	PageSize  int
}

// SalesStatsResponse - агрегаты по продажам
type SalesStatsResponse struct {
	SalesCount   int64 `json:"sales_count"`
	TicketsSold  int64 `json:"tickets_sold"`
	TotalRevenue int64 `json:"total_revenue"`
}

// SeatSaleResponse - продажа, в которую входит место
type SeatSaleResponse struct {
	SeatID string `json:"seat_id"`
	Sale   *Sale  `json:"sale"`
}

// CreateStudentRequest - модель для создания ученика
type CreateStudentRequest struct {
	StudentName     string `json:"student_name" binding:"required"`
	ResponsibleName string `json:"responsible_name" binding:"required"`
	Phone           string `json:"phone" binding:"required"`
}

// UpdateStudentRequest - частичное обновление ученика
type UpdateStudentRequest struct {
	StudentName     *string `json:"student_name,omitempty"`
	ResponsibleName *string `json:"responsible_name,omitempty"`
	Phone           *string `json:"phone,omitempty"`
}

// UpdateSettingsRequest - модель обновления настроек
type UpdateSettingsRequest struct {
	TicketPrice *int64 `json:"ticket_price" binding:"required,min=0"`
}

// SeatRequest - модель для выбора/снятия места на терминале
type SeatRequest struct {
	SeatID string `json:"seat_id" binding:"required"`
}

// SubmitSaleRequest - модель оформления продажи на терминале
type SubmitSaleRequest struct {
	BuyerName  string  `json:"buyer_name"`
	BuyerPhone string  `json:"buyer_phone"`
	StudentID  *string `json:"student_id,omitempty"`
}

// SelectionResponse - текущий набор выбранных мест
type SelectionResponse struct {
	Seats []string `json:"seats"`
	Count int      `json:"count"`
}

// SectorOccupancy - заполненность одного сектора
type SectorOccupancy struct {
	Sector    Sector `json:"sector"`
	Label     string `json:"label"`
	Total     int    `json:"total"`
	Available int    `json:"available"`
	Selected  int    `json:"selected"`
	Sold      int    `json:"sold"`
	Blocked   int    `json:"blocked"`
}

// OccupancyResponse - проекция заполненности зала для панели
type OccupancyResponse struct {
	Total     int               `json:"total"`
	Available int               `json:"available"`
	Selected  int               `json:"selected"`
	Sold      int               `json:"sold"`
	Blocked   int               `json:"blocked"`
	Sectors   []SectorOccupancy `json:"sectors"`
}
