package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblem — тип содержимого ответов об ошибках (RFC 7807).
const ContentTypeProblem = "application/problem+json"

// Ссылки на разделы RFC 7231 для поля type.
const (
	ProblemTypeBadRequest = "https://tools.ietf.org/html/rfc7231#section-6.5.1"
	ProblemTypeInternal   = "https://tools.ietf.org/html/rfc7231#section-6.6.1"
)

// Problem — тело ответа об ошибке.
type Problem struct {
	Type   string              `json:"type,omitempty"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

// WriteProblem — отдаёт problem+json и прерывает цепочку обработчиков.
func WriteProblem(c *gin.Context, p Problem) {
	if p.Status == 0 {
		p.Status = http.StatusInternalServerError
	}
	if p.Title == "" {
		p.Title = http.StatusText(p.Status)
	}
	c.Header("Content-Type", ContentTypeProblem)
	c.AbortWithStatusJSON(p.Status, p)
}
