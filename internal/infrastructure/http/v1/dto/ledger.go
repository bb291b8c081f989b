package dto

// CreateEntityRequest is the body of POST /entities.
type CreateEntityRequest struct {
	Name         string `json:"name" binding:"required"`
	Slug         string `json:"slug" binding:"required"`
	FyStartMonth int    `json:"fyStartMonth" binding:"omitempty,min=1,max=12"`
	// SeedChart installs the default chart of accounts.
	SeedChart bool   `json:"seedChart"`
	ChartName string `json:"chartName"`
}

// CreateUnitRequest is the body of POST /entities/:entityID/units.
type CreateUnitRequest struct {
	Name   string `json:"name" binding:"required"`
	Slug   string `json:"slug" binding:"required"`
	Prefix string `json:"prefix"`
}

// CreateLedgerRequest is the body of POST /entities/:entityID/ledgers.
type CreateLedgerRequest struct {
	Name string `json:"name" binding:"required"`
}
