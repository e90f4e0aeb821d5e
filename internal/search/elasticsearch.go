package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"boxoffice/internal/config"
	"boxoffice/internal/models"
)

// ElasticsearchClient представляет клиент для работы с индексом продаж
type ElasticsearchClient struct {
	client *elasticsearch.Client
	config config.ElasticsearchConfig
}

// SaleDocument is the indexed form of a sale
type SaleDocument struct {
	ID              string    `json:"id"`
	BuyerName       string    `json:"buyer_name"`
	BuyerPhone      string    `json:"buyer_phone"`
	StudentID       string    `json:"student_id,omitempty"`
	StudentName     string    `json:"student_name,omitempty"`
	ResponsibleName string    `json:"responsible_name,omitempty"`
	Seats           []string  `json:"seats"`
	SeatCount       int       `json:"seat_count"`
	TotalValue      int64     `json:"total_value"`
	SaleDate        time.Time `json:"sale_date"`
	CreatedAt       time.Time `json:"created_at"`
}

// NewSaleDocument flattens a sale for indexing
func NewSaleDocument(sale *models.Sale) SaleDocument {
	doc := SaleDocument{
		ID:         sale.ID,
		BuyerName:  sale.BuyerName,
		BuyerPhone: sale.BuyerPhone,
		Seats:      sale.Seats,
		SeatCount:  len(sale.Seats),
		TotalValue: sale.TotalValue,
		SaleDate:   sale.SaleDate,
		CreatedAt:  sale.CreatedAt,
	}
	if sale.StudentID != nil {
		doc.StudentID = *sale.StudentID
	}
	if sale.Student != nil {
		doc.StudentName = sale.Student.StudentName
		doc.ResponsibleName = sale.Student.ResponsibleName
	}
	return doc
}

// Sale converts the document back to the API model
func (d SaleDocument) Sale() models.Sale {
	sale := models.Sale{
		ID:         d.ID,
		BuyerName:  d.BuyerName,
		BuyerPhone: d.BuyerPhone,
		Seats:      d.Seats,
		TotalValue: d.TotalValue,
		SaleDate:   d.SaleDate,
		CreatedAt:  d.CreatedAt,
	}
	if d.StudentID != "" {
		id := d.StudentID
		sale.StudentID = &id
	}
	if d.StudentName != "" {
		sale.Student = &models.StudentRef{StudentName: d.StudentName, ResponsibleName: d.ResponsibleName}
	}
	return sale
}

// NewElasticsearchClient создает новый клиент Elasticsearch
func NewElasticsearchClient(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:     []string{cfg.URL},
		Username:      cfg.Username,
		Password:      cfg.Password,
		RetryOnStatus: []int{502, 503, 504, 429},
		MaxRetries:    cfg.MaxRetries,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	return newClient(es, cfg)
}

func newClient(es *elasticsearch.Client, cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	client := &ElasticsearchClient{
		client: es,
		config: cfg,
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()

	// Check connection and create index if needed
	if err := client.ensureIndex(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure index exists: %w", err)
	}

	return client, nil
}

// ensureIndex создает индекс если он не существует
func (c *ElasticsearchClient) ensureIndex(ctx context.Context) error {
	req := esapi.IndicesExistsRequest{
		Index: []string{c.config.Index},
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == 200 {
		slog.Info("Elasticsearch index already exists", "index", c.config.Index)
		return nil
	}

	mappingJSON, err := json.Marshal(salesMapping())
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	createReq := esapi.IndicesCreateRequest{
		Index: c.config.Index,
		Body:  bytes.NewReader(mappingJSON),
	}

	createRes, err := createReq.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer createRes.Body.Close()

	if createRes.IsError() {
		return fmt.Errorf("failed to create index: %s", createRes.String())
	}

	slog.Info("Created Elasticsearch index", "index", c.config.Index)
	return nil
}

func salesMapping() map[string]interface{} {
	text := func() map[string]interface{} {
		return map[string]interface{}{
			"type":     "text",
			"analyzer": "name_analyzer",
			"fields": map[string]interface{}{
				"keyword": map[string]interface{}{
					"type":         "keyword",
					"ignore_above": 256,
				},
			},
		}
	}

	return map[string]interface{}{
		"settings": map[string]interface{}{
			"number_of_shards":   1,
			"number_of_replicas": 0,
			"analysis": map[string]interface{}{
				"analyzer": map[string]interface{}{
					"name_analyzer": map[string]interface{}{
						"type":      "custom",
						"tokenizer": "standard",
						"filter":    []string{"lowercase", "asciifolding"},
					},
				},
			},
		},
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"id":               map[string]interface{}{"type": "keyword"},
				"buyer_name":       text(),
				"buyer_phone":      map[string]interface{}{"type": "keyword"},
				"student_id":       map[string]interface{}{"type": "keyword"},
				"student_name":     text(),
				"responsible_name": text(),
				"seats":            map[string]interface{}{"type": "keyword"},
				"seat_count":       map[string]interface{}{"type": "integer"},
				"total_value":      map[string]interface{}{"type": "long"},
				"sale_date": map[string]interface{}{
					"type":   "date",
					"format": "strict_date_optional_time||epoch_millis",
				},
				"created_at": map[string]interface{}{"type": "date"},
			},
		},
	}
}

// Search выполняет поиск продаж по покупателю, телефону, ученику и дате
func (c *ElasticsearchClient) Search(ctx context.Context, params models.SearchSalesParams) ([]models.Sale, error) {
	from, size := pageWindow(params.Page, params.PageSize)

	searchRequest := map[string]interface{}{
		"query": buildSearchQuery(params),
		"sort":  buildSortQuery(params.Query),
		"from":  from,
		"size":  size,
	}

	searchJSON, err := json.Marshal(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index: []string{c.config.Index},
		Body:  bytes.NewReader(searchJSON),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search error: %s", res.String())
	}

	var response struct {
		Hits struct {
			Hits []struct {
				Source SaleDocument `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	sales := make([]models.Sale, len(response.Hits.Hits))
	for i, hit := range response.Hits.Hits {
		sales[i] = hit.Source.Sale()
	}

	return sales, nil
}

func pageWindow(page, pageSize int) (from, size int) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if page > 1 {
		from = (page - 1) * pageSize
	}
	return from, pageSize
}

// buildSearchQuery строит поисковый запрос
func buildSearchQuery(params models.SearchSalesParams) map[string]interface{} {
	mustQueries := []map[string]interface{}{}
	filters := []map[string]interface{}{}

	if q := strings.TrimSpace(params.Query); q != "" {
		mustQueries = append(mustQueries, map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []map[string]interface{}{
					{
						"multi_match": map[string]interface{}{
							"query":     q,
							"fields":    []string{"buyer_name^2", "student_name", "responsible_name"},
							"fuzziness": "AUTO",
						},
					},
					{"prefix": map[string]interface{}{"buyer_phone": q}},
					{"term": map[string]interface{}{"seats": strings.ToUpper(q)}},
				},
				"minimum_should_match": 1,
			},
		})
	}

	if params.Date != "" {
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{
				"sale_date": map[string]interface{}{
					"gte": params.Date + "T00:00:00",
					"lte": params.Date + "T23:59:59",
				},
			},
		})
	}

	if params.StudentID != "" {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"student_id": params.StudentID},
		})
	}

	if len(mustQueries) == 0 && len(filters) == 0 {
		return map[string]interface{}{
			"match_all": map[string]interface{}{},
		}
	}

	boolQuery := map[string]interface{}{}
	if len(mustQueries) > 0 {
		boolQuery["must"] = mustQueries
	}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	return map[string]interface{}{"bool": boolQuery}
}

// buildSortQuery строит сортировку
func buildSortQuery(query string) []map[string]interface{} {
	if query != "" {
		return []map[string]interface{}{
			{"_score": map[string]interface{}{"order": "desc"}},
			{"created_at": map[string]interface{}{"order": "desc"}},
		}
	}

	return []map[string]interface{}{
		{"created_at": map[string]interface{}{"order": "desc"}},
	}
}

// IndexSale индексирует продажу
func (c *ElasticsearchClient) IndexSale(ctx context.Context, sale *models.Sale) error {
	docJSON, err := json.Marshal(NewSaleDocument(sale))
	if err != nil {
		return fmt.Errorf("failed to marshal sale: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      c.config.Index,
		DocumentID: sale.ID,
		Body:       bytes.NewReader(docJSON),
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to index sale: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("indexing error: %s", res.String())
	}

	return nil
}

// DeleteSale удаляет продажу из индекса
func (c *ElasticsearchClient) DeleteSale(ctx context.Context, id string) error {
	req := esapi.DeleteRequest{
		Index:      c.config.Index,
		DocumentID: id,
		Refresh:    "wait_for",
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to delete sale: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete error: %s", res.String())
	}

	return nil
}

// DeleteAll очищает индекс после сброса реестра
func (c *ElasticsearchClient) DeleteAll(ctx context.Context) error {
	body := `{"query":{"match_all":{}}}`
	refresh := true

	req := esapi.DeleteByQueryRequest{
		Index:   []string{c.config.Index},
		Body:    strings.NewReader(body),
		Refresh: &refresh,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("delete by query error: %s", res.String())
	}

	return nil
}

// Count возвращает количество документов
func (c *ElasticsearchClient) Count(ctx context.Context, params models.SearchSalesParams) (int64, error) {
	countJSON, err := json.Marshal(map[string]interface{}{
		"query": buildSearchQuery(params),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal count query: %w", err)
	}

	req := esapi.CountRequest{
		Index: []string{c.config.Index},
		Body:  bytes.NewReader(countJSON),
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return 0, fmt.Errorf("failed to execute count: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, fmt.Errorf("count error: %s", res.String())
	}

	var response struct {
		Count int64 `json:"count"`
	}

	if err := json.NewDecoder(res.Body).Decode(&response); err != nil {
		return 0, fmt.Errorf("failed to decode count response: %w", err)
	}

	return response.Count, nil
}

// HealthCheck проверяет состояние Elasticsearch
func (c *ElasticsearchClient) HealthCheck(ctx context.Context) error {
	req := esapi.ClusterHealthRequest{
		WaitForStatus: "yellow",
		Timeout:       10 * time.Second,
	}

	res, err := req.Do(ctx, c.client)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("health check error: %s", res.String())
	}

	return nil
}
