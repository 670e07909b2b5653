package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ndanilov/staffdesk/internal/apperrors"
	"github.com/ndanilov/staffdesk/internal/handlers/render"
	"github.com/ndanilov/staffdesk/internal/models"
	"github.com/ndanilov/staffdesk/internal/repository"
	"github.com/ndanilov/staffdesk/internal/service/staff"
)

const dateLayout = "2006-01-02"

type staffService interface {
	Create(ctx context.Context, staff models.Staff) (models.Staff, error)
	Get(ctx context.Context, staffID string) (models.Staff, error)
	List(ctx context.Context, filter repository.StaffFilter) (staff.StaffPage, error)
	Update(ctx context.Context, staffID string, upd repository.StaffUpdate) (models.Staff, error)
	Delete(ctx context.Context, staffID string) error
}

type StaffHandler struct {
	staffService staffService
}

func NewStaff(staffService staffService) *StaffHandler {
	return &StaffHandler{staffService: staffService}
}

type StaffResponse struct {
	StaffID   string          `json:"staff_id"`
	Name      string          `json:"name"`
	DOB       string          `json:"dob"`
	Salary    decimal.Decimal `json:"salary"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type StaffListResponse struct {
	Items      []StaffResponse `json:"items"`
	Total      int64           `json:"total"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int64           `json:"total_pages"`
}

func toStaffResponse(s models.Staff) StaffResponse {
	return StaffResponse{
		StaffID:   s.StaffID,
		Name:      s.Name,
		DOB:       s.DOB.Format(dateLayout),
		Salary:    s.Salary,
		Status:    s.Status,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (h *StaffHandler) Create(w http.ResponseWriter, r *http.Request) {
	type StaffCreateRequest struct {
		StaffID string          `json:"staff_id" validate:"required,min=1,max=20"`
		Name    string          `json:"name" validate:"required,min=1,max=100"`
		DOB     string          `json:"dob" validate:"required,datetime=2006-01-02"`
		Salary  decimal.Decimal `json:"salary"`
		Status  string          `json:"status" validate:"omitempty,oneof=active inactive"`
	}

	data, err := render.BindAndValidate[StaffCreateRequest](w, r)
	if err != nil {
		return
	}
	if data.Salary.IsNegative() {
		render.ServiceError(w, "Salary must not be negative", http.StatusUnprocessableEntity)
		return
	}

	dob, _ := time.Parse(dateLayout, data.DOB) // format validated above

	created, err := h.staffService.Create(r.Context(), models.Staff{
		StaffID: data.StaffID,
		Name:    data.Name,
		DOB:     dob,
		Salary:  data.Salary,
		Status:  data.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrStaffAlreadyExists):
			render.ServiceError(w, "Staff with this staff_id already exists", http.StatusConflict)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, toStaffResponse(created), http.StatusCreated)
}

func (h *StaffHandler) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.staffService.Get(r.Context(), r.PathValue("staff_id"))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrStaffNotFound):
			render.ServiceError(w, "Staff not found", http.StatusNotFound)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, toStaffResponse(found))
}

func (h *StaffHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := staffFilterFromQuery(r)
	if err != nil {
		render.ServiceError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	page, err := h.staffService.List(r.Context(), filter)
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	items := make([]StaffResponse, 0, len(page.Items))
	for _, s := range page.Items {
		items = append(items, toStaffResponse(s))
	}

	render.JSON(w, StaffListResponse{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: page.TotalPages,
	})
}

func (h *StaffHandler) Update(w http.ResponseWriter, r *http.Request) {
	type StaffUpdateRequest struct {
		StaffID *string          `json:"staff_id" validate:"omitempty,min=1,max=20"`
		Name    *string          `json:"name" validate:"omitempty,min=1,max=100"`
		DOB     *string          `json:"dob" validate:"omitempty,datetime=2006-01-02"`
		Salary  *decimal.Decimal `json:"salary"`
		Status  *string          `json:"status" validate:"omitempty,oneof=active inactive"`
	}

	data, err := render.BindAndValidate[StaffUpdateRequest](w, r)
	if err != nil {
		return
	}
	if data.Salary != nil && data.Salary.IsNegative() {
		render.ServiceError(w, "Salary must not be negative", http.StatusUnprocessableEntity)
		return
	}

	upd := repository.StaffUpdate{
		StaffID: data.StaffID,
		Name:    data.Name,
		Salary:  data.Salary,
		Status:  data.Status,
	}
	if data.DOB != nil {
		dob, _ := time.Parse(dateLayout, *data.DOB)
		upd.DOB = &dob
	}

	updated, err := h.staffService.Update(r.Context(), r.PathValue("staff_id"), upd)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrStaffNotFound):
			render.ServiceError(w, "Staff not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrStaffAlreadyExists):
			render.ServiceError(w, "Staff with this staff_id already exists", http.StatusConflict)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, toStaffResponse(updated))
}

func (h *StaffHandler) Delete(w http.ResponseWriter, r *http.Request) {
	type DeleteResponse struct {
		Message string `json:"message"`
	}

	err := h.staffService.Delete(r.Context(), r.PathValue("staff_id"))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrStaffNotFound):
			render.ServiceError(w, "Staff not found", http.StatusNotFound)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, DeleteResponse{Message: "Staff deleted successfully"})
}

func staffFilterFromQuery(r *http.Request) (repository.StaffFilter, error) {
	q := r.URL.Query()

	filter := repository.StaffFilter{
		Status:    q.Get("status"),
		Name:      q.Get("name"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
		Page:      1,
	}

	if filter.Status != "" && filter.Status != models.StaffStatusActive && filter.Status != models.StaffStatusInactive {
		return filter, errors.New("status must be 'active' or 'inactive'")
	}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return filter, errors.New("page must be a positive integer")
		}
		filter.Page = page
	}

	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return filter, errors.New("limit must be a positive integer")
		}
		filter.Limit = limit
	}

	if v := q.Get("salary_min"); v != "" {
		min, err := decimal.NewFromString(v)
		if err != nil {
			return filter, errors.New("salary_min must be a number")
		}
		filter.SalaryMin = &min
	}

	if v := q.Get("salary_max"); v != "" {
		max, err := decimal.NewFromString(v)
		if err != nil {
			return filter, errors.New("salary_max must be a number")
		}
		filter.SalaryMax = &max
	}

	return filter, nil
}
