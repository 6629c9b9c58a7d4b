package dto

type VerifyReferenceRequest struct {
	Token        string `json:"token" validate:"required"`
	ResponseText string `json:"response_text" validate:"required,max=5000"`
}

type VerifyReferenceResponse struct {
	ReferenceID string `json:"reference_id"`
	Checked     bool   `json:"checked"`
}
