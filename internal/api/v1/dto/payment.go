package dto

type CheckoutSessionRequestDTO struct {
	SuccessURL string `json:"success_url" validate:"required,url"`
	CancelURL  string `json:"cancel_url" validate:"required,url"`
	UserID     string `json:"user_id" validate:"required"`
}

type CheckoutSessionResponseDTO struct {
	URL string `json:"url"`
}

type WebhookResponseDTO struct {
	Status string `json:"status"`
}

type ErrorResponseDTO struct {
	Detail string `json:"detail"`
}
