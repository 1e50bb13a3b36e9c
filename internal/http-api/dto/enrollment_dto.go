package dto

type EnrollRequest struct {
	CourseID string `json:"course_id" binding:"required,uuid"`
}

// VerifyPaymentRequest carries the gateway callback fields; the course
// is resolved from the stored order, not trusted from the client.
type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}
