package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/reg4rd/classroom-booking/internal/application"
)

var (
	errBadRequestBody      = errors.New("Dữ liệu gửi lên không hợp lệ.")
	errInvalidTeacherID    = errors.New("Mã giáo viên không hợp lệ.")
	errInvalidRoomID       = errors.New("Mã phòng học không hợp lệ.")
	errMissingSessionToken = errors.New("Vui lòng đăng nhập để tiếp tục.")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := localizedStatusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "Bạn không có quyền thực hiện thao tác này.",
		})
	case errors.Is(err, application.ErrRoomNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "Phòng học không tồn tại."})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "Không tìm thấy dữ liệu yêu cầu."})
	case errors.Is(err, application.ErrInvalidRequest):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
			Message: "Yêu cầu không hợp lệ. Vui lòng chọn ít nhất một tiết học.",
		})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "Dữ liệu đã tồn tại."})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			details := localizeValidationErrors(vErr)
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "Dữ liệu nhập không hợp lệ.",
				Errors:  details,
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "Đã xảy ra lỗi hệ thống. Vui lòng thử lại sau."})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func localizedStatusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Yêu cầu không hợp lệ."
	case http.StatusUnauthorized:
		return "Vui lòng đăng nhập để tiếp tục."
	case http.StatusForbidden:
		return "Bạn không có quyền thực hiện thao tác này."
	case http.StatusNotFound:
		return "Không tìm thấy dữ liệu yêu cầu."
	case http.StatusConflict:
		return "Dữ liệu đã tồn tại."
	case http.StatusUnprocessableEntity:
		return "Dữ liệu nhập không hợp lệ."
	default:
		return "Đã xảy ra lỗi hệ thống. Vui lòng thử lại sau."
	}
}

func localizeValidationErrors(vErr *application.ValidationError) map[string]string {
	if vErr == nil || len(vErr.FieldErrors) == 0 {
		return nil
	}

	translated := make(map[string]string, len(vErr.FieldErrors))
	for field, msg := range vErr.FieldErrors {
		translated[field] = translateValidationMessage(msg)
	}
	return translated
}

func translateValidationMessage(message string) string {
	switch message {
	case "login is required":
		return "Tên đăng nhập là bắt buộc."
	case "login may only contain letters, digits, dots, dashes, and underscores":
		return "Tên đăng nhập chỉ được chứa chữ cái, chữ số, dấu chấm, gạch ngang và gạch dưới."
	case "password is required":
		return "Mật khẩu là bắt buộc."
	case "name is required":
		return "Tên phòng học là bắt buộc."
	case "capacity must be positive when set":
		return "Sức chứa phải là số nguyên dương."
	default:
		return message
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
