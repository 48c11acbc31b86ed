package response

import "github.com/gofiber/fiber/v3"

// Envelope is the body of every API response. Optional members are omitted when empty.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Results *int   `json:"results,omitempty"`
	Token   string `json:"token,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// DebugEnvelope is the development-mode error body.
type DebugEnvelope struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	ErrMessage string `json:"errMessage"`
	Stack      string `json:"stack,omitempty"`
}

const (
	MessageInternalServerError = "Internal Server Error"
)

func Success(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(normalizeStatus(status)).JSON(Envelope{Success: true, Message: message, Data: data})
}

func List(c fiber.Ctx, data any, n int) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Results: &n, Data: data})
}

func Token(c fiber.Ctx, token string) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: true, Token: token})
}

// Info answers 200 with success=false: the request worked but produced nothing to show.
func Info(c fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(Envelope{Success: false, Message: message})
}

func Error(c fiber.Ctx, status int, message string) error {
	if message == "" {
		message = MessageInternalServerError
	}
	return c.Status(normalizeStatus(status)).JSON(Envelope{Success: false, Message: message})
}

func Debug(c fiber.Ctx, status int, body DebugEnvelope) error {
	body.Success = false
	return c.Status(normalizeStatus(status)).JSON(body)
}

func normalizeStatus(status int) int {
	if status < 100 || status > 599 {
		return fiber.StatusInternalServerError
	}
	return status
}
