package books

// BookPayload is the body of create and update requests. A field that is
// absent, null or empty fails the required check.
type BookPayload struct {
	Name      string `json:"Name" validate:"required"`
	Author    string `json:"Author" validate:"required"`
	Publisher string `json:"Publisher" validate:"required"`
}
