package dto

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=200"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero o inválidos.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Limit > 200 {
		p.Limit = 200
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ActorDTO quién ejecuta la operación (viene del JWT, no del body).
type ActorDTO struct {
	ID   string
	Name string
}

// PartyDTO contraparte de un movimiento.
type PartyDTO struct {
	Name string `json:"name" validate:"required"`
	Type string `json:"type" validate:"required,oneof=customer supplier system"`
	ID   string `json:"id"`
}

// LineErrorDTO error por línea de un lote.
type LineErrorDTO struct {
	ProductID string `json:"productId"`
	Code      string `json:"code"`
	Reason    string `json:"reason"`
}

// BatchDTO resultado de un lote de movimientos: success | partial | failed.
type BatchDTO struct {
	Status    string                    `json:"status"`
	Succeeded []StockTransitionResponse `json:"succeeded"`
	Failed    []LineErrorDTO            `json:"failed"`
}
