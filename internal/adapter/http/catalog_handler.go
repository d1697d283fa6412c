package http

import (
	"net/http"

	"pawnshop-backend/internal/usecase/catalog"
	"pawnshop-backend/pkg/id"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type CatalogHandler struct{ uc *catalog.Usecase }

func NewCatalogHandler(uc *catalog.Usecase) *CatalogHandler { return &CatalogHandler{uc: uc} }

type branchReq struct {
	Code            string `json:"code"             validate:"required,max=16,code"`
	Name            string `json:"name"             validate:"required,max=128"`
	Sequence        int    `json:"sequence"`
	Active          *bool  `json:"active"`
	Street          string `json:"street"`
	Street2         string `json:"street2"`
	City            string `json:"city"`
	Zip             string `json:"zip"`
	Phone           string `json:"phone"`
	Email           string `json:"email"            validate:"omitempty,email"`
	WarehouseCode   string `json:"warehouse_code"   validate:"omitempty,max=16"`
	ManagerID       string `json:"manager_id"       validate:"omitempty,hex32"`
	SequencePrefix  string `json:"sequence_prefix"  validate:"max=16"`
	SequencePadding int    `json:"sequence_padding" validate:"gte=0,lte=12"`
}

func (r branchReq) input() catalog.BranchInput {
	return catalog.BranchInput{
		Code:            r.Code,
		Name:            r.Name,
		Sequence:        r.Sequence,
		Active:          r.Active == nil || *r.Active,
		Street:          r.Street,
		Street2:         r.Street2,
		City:            r.City,
		Zip:             r.Zip,
		Phone:           r.Phone,
		Email:           r.Email,
		WarehouseCode:   r.WarehouseCode,
		ManagerID:       r.ManagerID,
		SequencePrefix:  r.SequencePrefix,
		SequencePadding: r.SequencePadding,
	}
}

func (h *CatalogHandler) CreateBranch(c echo.Context) error {
	var req branchReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	b, err := h.uc.CreateBranch(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *CatalogHandler) UpdateBranch(c echo.Context) error {
	bid, err := uintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id path param"})
	}
	var req branchReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	b, err := h.uc.UpdateBranch(c.Request().Context(), bid, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *CatalogHandler) GetBranch(c echo.Context) error {
	bid, err := uintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id path param"})
	}
	b, err := h.uc.GetBranch(c.Request().Context(), bid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

func (h *CatalogHandler) ListBranches(c echo.Context) error {
	out, err := h.uc.ListBranches(c.Request().Context(), c.QueryParam("active") == "true")
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": out})
}

type categoryReq struct {
	Code            string  `json:"code"              validate:"required,max=16,code"`
	Name            string  `json:"name"              validate:"required,max=128"`
	Sequence        int     `json:"sequence"`
	Active          *bool   `json:"active"`
	ParentID        *uint64 `json:"parent_id"`
	Description     string  `json:"description"`
	Color           int     `json:"color"`
	DefaultLTVRatio float64 `json:"default_ltv_ratio" validate:"gte=0,lte=100,dec2"`
	RequiresSerial  bool    `json:"requires_serial"`
	RequiresPhoto   bool    `json:"requires_photo"`
}

func (r categoryReq) input() catalog.CategoryInput {
	return catalog.CategoryInput{
		Code:            r.Code,
		Name:            r.Name,
		Sequence:        r.Sequence,
		Active:          r.Active == nil || *r.Active,
		ParentID:        r.ParentID,
		Description:     r.Description,
		Color:           r.Color,
		DefaultLTVRatio: decimal.NewFromFloat(r.DefaultLTVRatio),
		RequiresSerial:  r.RequiresSerial,
		RequiresPhoto:   r.RequiresPhoto,
	}
}

func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req categoryReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	cat, err := h.uc.CreateCategory(c.Request().Context(), req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *CatalogHandler) UpdateCategory(c echo.Context) error {
	cid, err := uintParam(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id path param"})
	}
	var req categoryReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	cat, err := h.uc.UpdateCategory(c.Request().Context(), cid, req.input())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHandler) ListCategories(c echo.Context) error {
	out, err := h.uc.ListCategories(c.Request().Context(), c.QueryParam("active") == "true")
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": out})
}

func (h *CatalogHandler) UserBranches(c echo.Context) error {
	uid := c.Param("user_id")
	if !id.IsID32(uid) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id path param"})
	}
	dto, err := h.uc.UserBranches(c.Request().Context(), uid)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type assignBranchesReq struct {
	BranchIDs []uint64 `json:"branch_ids"`
}

func (h *CatalogHandler) AssignUserBranches(c echo.Context) error {
	uid := c.Param("user_id")
	if !id.IsID32(uid) {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user_id path param"})
	}
	var req assignBranchesReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	dto, err := h.uc.AssignUserBranches(c.Request().Context(), uid, req.BranchIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}
