package request

// ByIDRequest is a common struct for endpoints that require an ID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// Validate performs custom validation for ByIDRequest.
func (r *ByIDRequest) Validate() error {
	return nil
}

// ByCaseIDRequest is used by nested routes keyed on a case.
type ByCaseIDRequest struct {
	CaseID string `uri:"caseId" binding:"required,uuid"`
}

// Validate performs custom validation for ByCaseIDRequest.
func (r *ByCaseIDRequest) Validate() error {
	return nil
}
