package sync

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"strconv"
	stdsync "sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"

	"lendstock-sync/internal/remote"
	"lendstock-sync/internal/repository/sqlite"
)

const testOwner = "owner-1"

// fakeBackend is an in-memory stand-in for the REST backend, speaking the
// same envelope frame the real server does.
type fakeBackend struct {
	mu     stdsync.Mutex
	nextID int64
	down   bool

	items     map[int64]remote.InventoryItem
	loans     map[int64]remote.Loan
	reminders map[int64]remote.Reminder
	notes     map[int64]remote.Notification

	server *httptest.Server
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{
		nextID:    100,
		items:     map[int64]remote.InventoryItem{},
		loans:     map[int64]remote.Loan{},
		reminders: map[int64]remote.Reminder{},
		notes:     map[int64]remote.Notification{},
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", b.handleHealth).Methods("GET")

	r.HandleFunc("/api/v1/inventory", b.listItems).Methods("GET")
	r.HandleFunc("/api/v1/inventory", b.createItem).Methods("POST")
	r.HandleFunc("/api/v1/inventory/{id}", b.updateItem).Methods("PUT")
	r.HandleFunc("/api/v1/inventory/{id}", b.deleteItem).Methods("DELETE")

	r.HandleFunc("/api/v1/loans", b.listLoans).Methods("GET")
	r.HandleFunc("/api/v1/loans", b.createLoan).Methods("POST")
	r.HandleFunc("/api/v1/loans/{id}", b.getLoan).Methods("GET")
	r.HandleFunc("/api/v1/loans/{id}", b.updateLoan).Methods("PUT")
	r.HandleFunc("/api/v1/loans/{id}/status", b.updateLoanStatus).Methods("PATCH")
	r.HandleFunc("/api/v1/loans/{id}", b.deleteLoan).Methods("DELETE")

	r.HandleFunc("/api/v1/reminders", b.listReminders).Methods("GET")
	r.HandleFunc("/api/v1/reminders", b.createReminder).Methods("POST")
	r.HandleFunc("/api/v1/reminders/{id}", b.updateReminder).Methods("PUT")
	r.HandleFunc("/api/v1/reminders/{id}", b.deleteReminder).Methods("DELETE")

	r.HandleFunc("/api/v1/notifications", b.listNotes).Methods("GET")
	r.HandleFunc("/api/v1/notifications", b.createNote).Methods("POST")

	b.server = httptest.NewServer(r)
	t.Cleanup(b.server.Close)
	return b
}

func (b *fakeBackend) client() *remote.Client {
	return remote.NewClient(b.server.URL, "test-token", 5*time.Second)
}

func (b *fakeBackend) setDown(down bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.down = down
}

func (b *fakeBackend) id() int64 {
	b.nextID++
	return b.nextID
}

func (b *fakeBackend) handleHealth(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	down := b.down
	b.mu.Unlock()
	if down {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	body := map[string]any{"success": status < 400, "data": data}
	if status >= 400 {
		body["message"] = "request failed"
		delete(body, "data")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writePage(w http.ResponseWriter, data any, total int) {
	body := map[string]any{
		"success": true,
		"data":    data,
		"pagination": map[string]any{
			"currentPage": 1,
			"totalPages":  1,
			"totalItems":  total,
			"hasNext":     false,
			"hasPrev":     false,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(body)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

// --- inventory handlers ---

func (b *fakeBackend) listItems(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]remote.InventoryItem, 0, len(b.items))
	for _, it := range b.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writePage(w, out, len(out))
}

func (b *fakeBackend) createItem(w http.ResponseWriter, r *http.Request) {
	var req remote.InventoryItemRequest
	json.NewDecoder(r.Body).Decode(&req)
	b.mu.Lock()
	it := remote.InventoryItem{
		ID: b.id(), Name: req.Name, Code: req.Code, Quantity: req.Quantity,
		Category: req.Category, Condition: req.Condition, Location: req.Location,
		Description: req.Description, AcquisitionDate: req.AcquisitionDate,
	}
	b.items[it.ID] = it
	b.mu.Unlock()
	writeEnvelope(w, http.StatusCreated, it)
}

func (b *fakeBackend) updateItem(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var req remote.InventoryItemRequest
	json.NewDecoder(r.Body).Decode(&req)
	b.mu.Lock()
	defer b.mu.Unlock()
	it, ok := b.items[id]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, nil)
		return
	}
	it.Name, it.Code, it.Quantity = req.Name, req.Code, req.Quantity
	it.Category, it.Condition, it.Location = req.Category, req.Condition, req.Location
	it.Description, it.AcquisitionDate = req.Description, req.AcquisitionDate
	b.items[id] = it
	writeEnvelope(w, http.StatusOK, it)
}

func (b *fakeBackend) deleteItem(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.items[id]; !ok {
		writeEnvelope(w, http.StatusNotFound, nil)
		return
	}
	delete(b.items, id)
	writeEnvelope(w, http.StatusOK, nil)
}

// --- loan handlers ---

func (b *fakeBackend) listLoans(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]remote.Loan, 0, len(b.loans))
	for _, l := range b.loans {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writePage(w, out, len(out))
}

func (b *fakeBackend) createLoan(w http.ResponseWriter, r *http.Request) {
	var req remote.LoanRequest
	json.NewDecoder(r.Body).Decode(&req)
	b.mu.Lock()
	l := remote.Loan{
		ID: b.id(), BorrowerName: req.BorrowerName, BorrowerPhone: req.BorrowerPhone,
		LoanDate: req.LoanDate, DueDate: req.DueDate, Status: "waiting",
	}
	for _, li := range req.Items {
		inv := li.InventoryID
		item := b.items[inv]
		l.Items = append(l.Items, remote.LoanItem{
			ID: b.id(), InventoryID: &inv, ItemName: item.Name, ItemCode: item.Code,
			Quantity: li.Quantity,
		})
	}
	b.loans[l.ID] = l
	b.mu.Unlock()
	writeEnvelope(w, http.StatusCreated, l)
}

func (b *fakeBackend) getLoan(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.loans[id]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, nil)
		return
	}
	writeEnvelope(w, http.StatusOK, l)
}

func (b *fakeBackend) updateLoan(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var req remote.LoanUpdateRequest
	json.NewDecoder(r.Body).Decode(&req)
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.loans[id]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, nil)
		return
	}
	if req.DueDate != "" {
		l.DueDate = req.DueDate
	}
	b.loans[id] = l
	writeEnvelope(w, http.StatusOK, l)
}

func (b *fakeBackend) updateLoanStatus(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var req remote.LoanStatusRequest
	json.NewDecoder(r.Body).Decode(&req)
	b.mu.Lock()
	defer b.mu.Unlock()
	l, ok := b.loans[id]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, nil)
		return
	}
	l.Status = req.Status
	if req.ReturnDate != "" {
		l.ReturnDate = req.ReturnDate
	}
	b.loans[id] = l
	writeEnvelope(w, http.StatusOK, l)
}

func (b *fakeBackend) deleteLoan(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.loans[id]; !ok {
		writeEnvelope(w, http.StatusNotFound, nil)
		return
	}
	delete(b.loans, id)
	writeEnvelope(w, http.StatusOK, nil)
}

// --- reminder handlers ---

func (b *fakeBackend) listReminders(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]remote.Reminder, 0, len(b.reminders))
	for _, rem := range b.reminders {
		out = append(out, rem)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writePage(w, out, len(out))
}

func (b *fakeBackend) createReminder(w http.ResponseWriter, r *http.Request) {
	var req remote.ReminderRequest
	json.NewDecoder(r.Body).Decode(&req)
	b.mu.Lock()
	rem := remote.Reminder{
		ID: b.id(), Type: req.Type, Title: req.Title, PeriodicMonths: req.PeriodicMonths,
		ScheduledDatetime: req.ScheduledDatetime, PushToken: req.PushToken, IsActive: req.IsActive,
	}
	b.reminders[rem.ID] = rem
	b.mu.Unlock()
	writeEnvelope(w, http.StatusCreated, rem)
}

func (b *fakeBackend) updateReminder(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var req remote.ReminderRequest
	json.NewDecoder(r.Body).Decode(&req)
	b.mu.Lock()
	defer b.mu.Unlock()
	rem, ok := b.reminders[id]
	if !ok {
		writeEnvelope(w, http.StatusNotFound, nil)
		return
	}
	rem.Type, rem.Title = req.Type, req.Title
	rem.PeriodicMonths, rem.ScheduledDatetime = req.PeriodicMonths, req.ScheduledDatetime
	rem.PushToken, rem.IsActive = req.PushToken, req.IsActive
	b.reminders[id] = rem
	writeEnvelope(w, http.StatusOK, rem)
}

func (b *fakeBackend) deleteReminder(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.reminders[id]; !ok {
		writeEnvelope(w, http.StatusNotFound, nil)
		return
	}
	delete(b.reminders, id)
	writeEnvelope(w, http.StatusOK, nil)
}

// --- notification handlers ---

func (b *fakeBackend) listNotes(w http.ResponseWriter, _ *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]remote.Notification, 0, len(b.notes))
	for _, n := range b.notes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writePage(w, out, len(out))
}

func (b *fakeBackend) createNote(w http.ResponseWriter, r *http.Request) {
	var req remote.NotificationRequest
	json.NewDecoder(r.Body).Decode(&req)
	b.mu.Lock()
	n := remote.Notification{
		ID: b.id(), Title: req.Title, Message: req.Message, Timestamp: req.Timestamp,
		Status: req.Status, LoanID: req.LoanID, ReminderID: req.ReminderID,
	}
	b.notes[n.ID] = n
	b.mu.Unlock()
	writeEnvelope(w, http.StatusCreated, n)
}

// openTestStore opens a fresh migrated database for one test.
func openTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlite.NewStore(db)
}
