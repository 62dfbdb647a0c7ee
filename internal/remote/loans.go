package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
)

// ListLoans fetches every page of the owner's loans. status filters
// server-side when non-empty.
func (c *Client) ListLoans(ctx context.Context, status string) ([]Loan, error) {
	return listAll(func(page int) ([]Loan, *Pagination, error) {
		q := pageQuery(page)
		if status != "" {
			q.Set("status", status)
		}
		var loans []Loan
		env, err := c.do(ctx, http.MethodGet, "/api/v1/loans", q, nil, &loans)
		if err != nil {
			return nil, nil, err
		}
		return loans, env.Pagination, nil
	})
}

func (c *Client) GetLoan(ctx context.Context, id int64) (*Loan, error) {
	var loan Loan
	_, err := c.do(ctx, http.MethodGet, "/api/v1/loans/"+strconv.FormatInt(id, 10), nil, nil, &loan)
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (c *Client) CreateLoan(ctx context.Context, req *LoanRequest) (*Loan, error) {
	var loan Loan
	_, err := c.do(ctx, http.MethodPost, "/api/v1/loans", nil, req, &loan)
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// CreateLoanWithPhotos creates a loan and attaches one borrow photo per item.
// photoPaths is keyed by item position ("photo_0", "photo_1", ...).
func (c *Client) CreateLoanWithPhotos(ctx context.Context, req *LoanRequest, photoPaths []string) (*Loan, error) {
	items, err := json.Marshal(req.Items)
	if err != nil {
		return nil, fmt.Errorf("encode loan items: %w", err)
	}
	fields := map[string]string{
		"borrower_name":  req.BorrowerName,
		"borrower_phone": req.BorrowerPhone,
		"loan_date":      req.LoanDate,
		"due_date":       req.DueDate,
		"items":          string(items),
	}
	files := make(map[string]string, len(photoPaths))
	for i, p := range photoPaths {
		files["photo_"+strconv.Itoa(i)] = p
	}
	var loan Loan
	if err := c.doMultipart(ctx, http.MethodPost, "/api/v1/loans", fields, files, &loan); err != nil {
		return nil, err
	}
	return &loan, nil
}

func (c *Client) UpdateLoan(ctx context.Context, id int64, req *LoanUpdateRequest) (*Loan, error) {
	var loan Loan
	_, err := c.do(ctx, http.MethodPut, "/api/v1/loans/"+strconv.FormatInt(id, 10), nil, req, &loan)
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (c *Client) UpdateLoanStatus(ctx context.Context, id int64, req *LoanStatusRequest) (*Loan, error) {
	var loan Loan
	_, err := c.do(ctx, http.MethodPatch, "/api/v1/loans/"+strconv.FormatInt(id, 10)+"/status", nil, req, &loan)
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func (c *Client) DeleteLoan(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/loans/"+strconv.FormatInt(id, 10), nil, nil, nil)
	return err
}

// UploadReturnPhotos attaches return photos to loan items, keyed by the
// item's server id.
func (c *Client) UploadReturnPhotos(ctx context.Context, loanID int64, photosByItem map[int64]string) (*Loan, error) {
	files := make(map[string]string, len(photosByItem))
	for itemID, p := range photosByItem {
		files["return_photo_"+strconv.FormatInt(itemID, 10)] = p
	}
	var loan Loan
	err := c.doMultipart(ctx, http.MethodPost,
		"/api/v1/loans/"+strconv.FormatInt(loanID, 10)+"/return-photos", nil, files, &loan)
	if err != nil {
		return nil, err
	}
	return &loan, nil
}
