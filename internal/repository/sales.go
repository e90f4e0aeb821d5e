package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"

	"boxoffice/internal/database"
	"boxoffice/internal/models"
)

type SaleRepository struct {
	db *database.DB
}

func NewSaleRepository(db *database.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

const saleColumns = `
		s.id, s.buyer_name, s.buyer_phone, s.student_id, s.seats, s.total_value,
		s.sale_date, s.created_at, st.student_name, st.responsible_name`

const saleFrom = `
		FROM sales s
		LEFT JOIN students st ON st.id = s.student_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSale(row rowScanner) (*models.Sale, error) {
	var sale models.Sale
	var studentName, responsibleName sql.NullString

	err := row.Scan(
		&sale.ID,
		&sale.BuyerName,
		&sale.BuyerPhone,
		&sale.StudentID,
		pq.Array(&sale.Seats),
		&sale.TotalValue,
		&sale.SaleDate,
		&sale.CreatedAt,
		&studentName,
		&responsibleName,
	)
	if err != nil {
		return nil, err
	}

	if studentName.Valid {
		sale.Student = &models.StudentRef{
			StudentName:     studentName.String,
			ResponsibleName: responsibleName.String,
		}
	}

	return &sale, nil
}

func scanSales(rows *sql.Rows) ([]models.Sale, error) {
	defer rows.Close()

	sales := []models.Sale{}
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *sale)
	}

	return sales, rows.Err()
}

// List returns every sale, newest first. This is the reconciliation read path, so it retries on connection errors.
func (r *SaleRepository) List(ctx context.Context) ([]models.Sale, error) {
	query := `SELECT` + saleColumns + saleFrom + `
		ORDER BY s.created_at DESC`

	rows, err := r.db.QueryWithRetry(ctx, query)
	if err != nil {
		return nil, err
	}

	return scanSales(rows)
}

// Create inserts the sale in a single statement, so all seats are recorded or none
func (r *SaleRepository) Create(ctx context.Context, sale *models.Sale) error {
	query := `
		INSERT INTO sales (buyer_name, buyer_phone, student_id, seats, total_value, sale_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		sale.BuyerName,
		sale.BuyerPhone,
		sale.StudentID,
		pq.Array(sale.Seats),
		sale.TotalValue,
		sale.SaleDate,
	).Scan(&sale.ID, &sale.CreatedAt)
}

func (r *SaleRepository) GetByID(ctx context.Context, id string) (*models.Sale, error) {
	query := `SELECT` + saleColumns + saleFrom + `
		WHERE s.id = $1`

	sale, err := scanSale(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return sale, err
}

// Delete returns false when the sale does not exist
func (r *SaleRepository) Delete(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sales WHERE id = $1`, id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

// GetBySeat finds the newest sale that covers the seat
func (r *SaleRepository) GetBySeat(ctx context.Context, seatID string) (*models.Sale, error) {
	query := `SELECT` + saleColumns + saleFrom + `
		WHERE $1 = ANY(s.seats)
		ORDER BY s.created_at DESC
		LIMIT 1`

	sale, err := scanSale(r.db.QueryRowContext(ctx, query, seatID))
	if err == sql.ErrNoRows {
		return nil, nil
	}

	return sale, err
}

// Search is the PostgreSQL fallback when Elasticsearch is not configured
func (r *SaleRepository) Search(ctx context.Context, params models.SearchSalesParams) ([]models.Sale, error) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if q := strings.TrimSpace(params.Query); q != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(s.buyer_name ILIKE $%d OR s.buyer_phone ILIKE $%d OR st.student_name ILIKE $%d OR st.responsible_name ILIKE $%d OR $%d = ANY(s.seats))",
			argIndex, argIndex, argIndex, argIndex, argIndex+1))
		args = append(args, "%"+q+"%", strings.ToUpper(q))
		argIndex += 2
	}

	if params.Date != "" {
		day, err := time.Parse("2006-01-02", params.Date)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", params.Date, err)
		}
		conditions = append(conditions, fmt.Sprintf("s.sale_date >= $%d AND s.sale_date < $%d", argIndex, argIndex+1))
		args = append(args, day, day.AddDate(0, 0, 1))
		argIndex += 2
	}

	if params.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("s.student_id = $%d", argIndex))
		args = append(args, params.StudentID)
		argIndex++
	}

	query := `SELECT` + saleColumns + saleFrom
	if len(conditions) > 0 {
		query += "\n\t\tWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\n\t\tORDER BY s.created_at DESC"

	page, pageSize := params.Page, params.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	if page < 1 {
		page = 1
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.QueryWithRetry(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	return scanSales(rows)
}

func (r *SaleRepository) Stats(ctx context.Context) (*models.SalesStatsResponse, error) {
	var stats models.SalesStatsResponse
	query := `
		SELECT COUNT(*), COALESCE(SUM(cardinality(seats)), 0), COALESCE(SUM(total_value), 0)
		FROM sales`

	err := r.db.QueryRowContext(ctx, query).Scan(&stats.SalesCount, &stats.TicketsSold, &stats.TotalRevenue)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// DeleteAll clears the ledger and returns how many sales were removed
func (r *SaleRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM sales`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
