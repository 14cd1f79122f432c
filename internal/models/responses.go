package models

// ToolResponse is the payload every tool returns. "Found nothing" is a
// successful-shape response with Success false and a speakable message; it
// is not an error. Every message in here may be read aloud verbatim, so no
// internal detail ever lands in one.
type ToolResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Ok builds a success response.
func Ok(message string, data any) ToolResponse {
	return ToolResponse{Success: true, Message: message, Data: data}
}

// Fail builds a not-found or validation response with a corrective message.
func Fail(message string) ToolResponse {
	return ToolResponse{Success: false, Message: message}
}

// SearchData is the data payload of a successful product search.
type SearchData struct {
	Count    int             `json:"count"`
	Products []ProductResult `json:"products"`
}

// ProductResult is one spoken product listing entry.
type ProductResult struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	URL   string `json:"url"`
}

// OrderData is the data payload of an order-status lookup.
type OrderData struct {
	Reference string      `json:"reference"`
	Status    string      `json:"status"`
	Total     string      `json:"total"`
	Placed    string      `json:"placed,omitempty"`
	Items     []OrderItem `json:"items,omitempty"`
}

// OrderItem is one spoken order line.
type OrderItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// StockData is the data payload of a stock check.
type StockData struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	InStock   bool   `json:"in_stock"`
}

// TrackingData is the data payload of a tracking lookup.
type TrackingData struct {
	Reference      string `json:"reference"`
	Carrier        string `json:"carrier"`
	TrackingNumber string `json:"tracking_number"`
}

// TicketData is the data payload of a ticket creation.
type TicketData struct {
	TicketID int `json:"ticket_id"`
}
