package remote

import (
	"context"
	"net/http"
	"strconv"
)

// ListInventory fetches every page of the owner's inventory.
func (c *Client) ListInventory(ctx context.Context) ([]InventoryItem, error) {
	return listAll(func(page int) ([]InventoryItem, *Pagination, error) {
		var items []InventoryItem
		env, err := c.do(ctx, http.MethodGet, "/api/v1/inventory", pageQuery(page), nil, &items)
		if err != nil {
			return nil, nil, err
		}
		return items, env.Pagination, nil
	})
}

func (c *Client) GetInventoryItem(ctx context.Context, id int64) (*InventoryItem, error) {
	var item InventoryItem
	_, err := c.do(ctx, http.MethodGet, "/api/v1/inventory/"+strconv.FormatInt(id, 10), nil, nil, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) CreateInventoryItem(ctx context.Context, req *InventoryItemRequest) (*InventoryItem, error) {
	var item InventoryItem
	_, err := c.do(ctx, http.MethodPost, "/api/v1/inventory", nil, req, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateInventoryItemWithPhoto sends the item fields plus a photo file as
// multipart form data.
func (c *Client) CreateInventoryItemWithPhoto(ctx context.Context, req *InventoryItemRequest, photoPath string) (*InventoryItem, error) {
	var item InventoryItem
	err := c.doMultipart(ctx, http.MethodPost, "/api/v1/inventory",
		inventoryFields(req), map[string]string{"photo": photoPath}, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) UpdateInventoryItem(ctx context.Context, id int64, req *InventoryItemRequest) (*InventoryItem, error) {
	var item InventoryItem
	_, err := c.do(ctx, http.MethodPut, "/api/v1/inventory/"+strconv.FormatInt(id, 10), nil, req, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) UpdateInventoryItemWithPhoto(ctx context.Context, id int64, req *InventoryItemRequest, photoPath string) (*InventoryItem, error) {
	var item InventoryItem
	err := c.doMultipart(ctx, http.MethodPut, "/api/v1/inventory/"+strconv.FormatInt(id, 10),
		inventoryFields(req), map[string]string{"photo": photoPath}, &item)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (c *Client) DeleteInventoryItem(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, "/api/v1/inventory/"+strconv.FormatInt(id, 10), nil, nil, nil)
	return err
}

func inventoryFields(req *InventoryItemRequest) map[string]string {
	return map[string]string{
		"name":             req.Name,
		"code":             req.Code,
		"quantity":         strconv.Itoa(req.Quantity),
		"category":         req.Category,
		"condition":        req.Condition,
		"location":         req.Location,
		"description":      req.Description,
		"acquisition_date": req.AcquisitionDate,
	}
}
