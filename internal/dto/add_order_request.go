package dto

type AddOrderRequest struct {
	TableNumber int    `json:"table_number"`
	MenuItem    string `json:"menu_item"`
	Quantity    int    `json:"quantity"`
}
