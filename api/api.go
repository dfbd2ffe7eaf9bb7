package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/learnhub-api/utils"
	"github.com/sahilchouksey/learnhub-api/utils/response"
)

type APIServer struct {
	app           *fiber.App
	listenAddress string
	log           *utils.Logger
}

func NewAPIServer(listenAddress string, log *utils.Logger) *APIServer {
	return &APIServer{
		app:           NewApp(log),
		listenAddress: listenAddress,
		log:           log,
	}
}

// NewApp builds the fiber app with an ErrorHandler that keeps every
// failure inside the JSON envelope.
func NewApp(log *utils.Logger) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "learnhub-api",
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: errorHandler(log),
	})
}

func errorHandler(log *utils.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			switch fiberErr.Code {
			case fiber.StatusNotFound:
				return response.NotFound(c, "Route not found")
			case fiber.StatusMethodNotAllowed:
				return response.Error(c, fiberErr.Code, fiberErr.Message, "METHOD_NOT_ALLOWED")
			case fiber.StatusRequestEntityTooLarge:
				return response.Error(c, fiberErr.Code, "Request body too large", "PAYLOAD_TOO_LARGE")
			}
			if fiberErr.Code < fiber.StatusInternalServerError {
				return response.Error(c, fiberErr.Code, fiberErr.Message, "REQUEST_ERROR")
			}
		}

		log.Error("unhandled request error", "method", c.Method(), "path", c.Path(), "error", err)
		return response.InternalServerError(c, "")
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	s.log.Info("starting API server", "address", s.listenAddress)
	return s.app.Listen(s.listenAddress)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}
