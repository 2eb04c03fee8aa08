package api

// SubmitRequest is the body of POST /submit.
type SubmitRequest struct {
	Complaint string `json:"complaint" binding:"required"`
}

// SubmitResponse echoes the stored complaint.
type SubmitResponse struct {
	ID              string `json:"doc_id"`
	Category        string `json:"category"`
	Priority        string `json:"priority"`
	Summary         string `json:"summary"`
	SuggestedAction string `json:"suggested_action"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
}

// UpdateStatusRequest is the body of POST /update_status.
type UpdateStatusRequest struct {
	ID     string `json:"doc_id" binding:"required"`
	Status string `json:"status" binding:"required"`
}

// UpdatePriorityRequest is the body of POST /update_priority.
type UpdatePriorityRequest struct {
	ID       string `json:"doc_id"   binding:"required"`
	Priority string `json:"priority" binding:"required"`
}

// UpdateCategoryRequest is the body of POST /update_category.
type UpdateCategoryRequest struct {
	ID       string `json:"doc_id"   binding:"required"`
	Category string `json:"category" binding:"required"`
}

// DeleteRequest is the body of POST /delete_complaint.
type DeleteRequest struct {
	ID string `json:"doc_id" binding:"required"`
}

// SuccessResponse acknowledges a mutation.
type SuccessResponse struct {
	Success bool `json:"success"`
}
