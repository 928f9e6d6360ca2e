package subscription

type SuccessResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error" example:"Please enter a valid email address"`
}
