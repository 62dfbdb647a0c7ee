package remote

import "encoding/json"

// envelope is the response frame every endpoint uses.
type envelope struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalItems  int  `json:"totalItems"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// InventoryItem is the server representation of an inventory item.
type InventoryItem struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Code            string `json:"code"`
	Quantity        int    `json:"quantity"`
	Category        string `json:"category"`
	Condition       string `json:"condition"`
	Location        string `json:"location"`
	Description     string `json:"description"`
	AcquisitionDate string `json:"acquisition_date"` // ISO date or datetime
	Photo           string `json:"photo"`            // may be server-relative
}

// InventoryItemRequest is the create/update payload.
type InventoryItemRequest struct {
	Name            string `json:"name"`
	Code            string `json:"code"`
	Quantity        int    `json:"quantity"`
	Category        string `json:"category"`
	Condition       string `json:"condition"`
	Location        string `json:"location"`
	Description     string `json:"description"`
	AcquisitionDate string `json:"acquisition_date"`
}

type Photo struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
}

type LoanItem struct {
	ID           int64   `json:"id"`
	InventoryID  *int64  `json:"inventory_id,omitempty"`
	ItemName     string  `json:"item_name"`
	ItemCode     string  `json:"item_code"`
	Quantity     int     `json:"quantity"`
	BorrowPhotos []Photo `json:"borrow_photos,omitempty"`
	ReturnPhotos []Photo `json:"return_photos,omitempty"`
}

type Loan struct {
	ID            int64      `json:"id"`
	BorrowerName  string     `json:"borrower_name"`
	BorrowerPhone string     `json:"borrower_phone"`
	LoanDate      string     `json:"loan_date"`
	DueDate       string     `json:"due_date"`
	ReturnDate    string     `json:"return_date,omitempty"`
	Status        string     `json:"status"`
	Items         []LoanItem `json:"items"`
}

// LoanItemRequest references inventory by its server id.
type LoanItemRequest struct {
	InventoryID int64 `json:"inventory_id"`
	Quantity    int   `json:"quantity"`
}

type LoanRequest struct {
	BorrowerName  string            `json:"borrower_name"`
	BorrowerPhone string            `json:"borrower_phone"`
	LoanDate      string            `json:"loan_date"`
	DueDate       string            `json:"due_date"`
	Items         []LoanItemRequest `json:"items"`
}

// LoanUpdateRequest changes the deadline and/or the item list.
type LoanUpdateRequest struct {
	DueDate string            `json:"due_date,omitempty"`
	Items   []LoanItemRequest `json:"items,omitempty"`
}

type LoanStatusRequest struct {
	Status     string `json:"status"`
	ReturnDate string `json:"return_date,omitempty"`
}

type Reminder struct {
	ID                int64  `json:"id"`
	Type              string `json:"type"` // "periodic" or "custom"
	Title             string `json:"title"`
	PeriodicMonths    int    `json:"periodic_months,omitempty"`
	ScheduledDatetime string `json:"scheduled_datetime,omitempty"` // ISO datetime
	PushToken         string `json:"push_token"`
	IsActive          bool   `json:"is_active"`
	LastNotified      string `json:"last_notified,omitempty"` // ISO datetime
}

type ReminderRequest struct {
	Type              string `json:"type"`
	Title             string `json:"title"`
	PeriodicMonths    int    `json:"periodic_months,omitempty"`
	ScheduledDatetime string `json:"scheduled_datetime,omitempty"`
	PushToken         string `json:"push_token"`
	IsActive          bool   `json:"is_active"`
}

type Notification struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"` // ISO datetime
	Status     string `json:"status"`
	LoanID     *int64 `json:"loan_id,omitempty"`
	ReminderID *int64 `json:"reminder_id,omitempty"`
}

// NotificationRequest is the typed history-creation payload.
type NotificationRequest struct {
	Title      string `json:"title"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
	Status     string `json:"status"`
	LoanID     *int64 `json:"loan_id,omitempty"`
	ReminderID *int64 `json:"reminder_id,omitempty"`
}
