package bidhandler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"autorevive/internal/auth"
	"autorevive/internal/listing"
	"autorevive/internal/services/bidding"
)

type Handler struct {
	svc      bidding.Service
	verifier *auth.Verifier
}

func New(svc bidding.Service, verifier *auth.Verifier) *Handler {
	return &Handler{svc: svc, verifier: verifier}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/listings", h.browse)
	r.GET("/listings/:id", h.detail)
	r.GET("/listings/:id/bids", h.history)
	r.POST("/listings/:id/bid", h.verifier.Middleware(), auth.RequireRole(auth.RoleUser), h.bid)
}

// @Summary		Place a bid
// @Description	Registered user bids on an approved listing. The new amount must beat the current high bid and respect the listing's increment policy.
// @Tags			Bidding
// @Param			id		path	int				true	"Listing ID"
// @Param			body	body	PlaceBidBody	true	"Bid payload"
// @Security		BearerAuth
// @Success		201	{object}	BidOutcome
// @Failure		400	{object}	BidOutcome
// @Failure		401	{object}	ErrorResponse
// @Failure		403	{object}	ErrorResponse
// @Failure		404	{object}	ErrorResponse
// @Failure		500	{object}	ErrorResponse
// @Router			/listings/{id}/bid [post]
func (h *Handler) bid(ginCtx *gin.Context) {
	listingID, err := listingIDParam(ginCtx)
	if err != nil {
		ginCtx.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid listing id"})
		return
	}

	var body PlaceBidBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, BidOutcome{
			Accepted: false,
			Reason:   "invalid_amount",
			Error:    "bid amount is required",
		})
		return
	}

	id, ok := auth.IdentityFrom(ginCtx)
	if !ok {
		ginCtx.JSON(http.StatusUnauthorized, ErrorResponse{Error: auth.ErrMissingToken.Error()})
		return
	}
	bidder := bidding.Bidder{ID: id.UserID, Username: id.Username, Role: id.Role}

	receipt, err := h.svc.SubmitBid(ginCtx.Request.Context(), listingID, bidder, body.Amount)
	if err != nil {
		h.rejectBid(ginCtx, listingID, err)
		return
	}

	ginCtx.JSON(http.StatusCreated, BidOutcome{
		Accepted:       true,
		BidID:          receipt.BidID,
		Amount:         &receipt.Amount,
		CurrentHighBid: &receipt.NewHighBid,
		TotalBids:      &receipt.TotalBids,
	})
}

func (h *Handler) rejectBid(ginCtx *gin.Context, listingID int64, err error) {
	var rej *bidding.Rejection
	switch {
	case errors.Is(err, listing.ErrNotFound):
		ginCtx.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})

	case errors.As(err, &rej):
		out := BidOutcome{
			Accepted:         false,
			Reason:           rej.Code(),
			Error:            rej.Error(),
			NextValidAmounts: rej.NextValidAmounts,
		}
		if rej.CurrentHighBid.IsPositive() {
			out.CurrentHighBid = &rej.CurrentHighBid
		}
		ginCtx.JSON(http.StatusBadRequest, out)

	case errors.Is(err, bidding.ErrForbidden):
		ginCtx.JSON(http.StatusForbidden, ErrorResponse{Error: err.Error()})

	case errors.Is(err, bidding.ErrStorage):
		// Already logged inside the coordinator; safe for the caller to retry.
		ginCtx.JSON(http.StatusInternalServerError, ErrorResponse{Error: bidding.ErrStorage.Error()})

	default:
		zap.L().Error("bid_submit", zap.Int64("listing_id", listingID), zap.Error(err))
		ginCtx.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}

// @Summary		Browse listings
// @Description	Paginated approved listings with current bid and bid count.
// @Tags			Listings
// @Param			status	query		string	false	"Status filter"	Enums(pending,approved,rejected)
// @Param			search	query		string	false	"Name/description search"
// @Param			limit	query		int		false	"Max results (0-100)"	default(20)
// @Param			offset	query		int		false	"Pagination offset"		default(0)
// @Success		200	{array}		listing.Summary
// @Failure		400	{object}	ErrorResponse
// @Router			/listings [get]
func (h *Handler) browse(ginCtx *gin.Context) {
	var q BrowseListingsQuery
	if err := ginCtx.ShouldBindQuery(&q); err != nil {
		ginCtx.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	out, err := h.svc.BrowseListings(ginCtx.Request.Context(), listing.Status(q.Status), q.Search, q.Limit, q.Offset)
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusOK, out)
}

// @Summary		Listing details
// @Description	One listing with its current bid, bid count, and full bid history.
// @Tags			Listings
// @Param			id	path		int	true	"Listing ID"
// @Success		200	{object}	bidding.ListingDetail
// @Failure		404	{object}	ErrorResponse
// @Router			/listings/{id} [get]
func (h *Handler) detail(ginCtx *gin.Context) {
	listingID, err := listingIDParam(ginCtx)
	if err != nil {
		ginCtx.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid listing id"})
		return
	}
	dto, err := h.svc.ListingDetail(ginCtx.Request.Context(), listingID)
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			ginCtx.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		ginCtx.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusOK, dto)
}

// @Summary		Bid history
// @Description	All bids for a listing, highest first.
// @Tags			Bidding
// @Param			id	path		int	true	"Listing ID"
// @Success		200	{array}		bidledger.Bid
// @Failure		404	{object}	ErrorResponse
// @Router			/listings/{id}/bids [get]
func (h *Handler) history(ginCtx *gin.Context) {
	listingID, err := listingIDParam(ginCtx)
	if err != nil {
		ginCtx.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid listing id"})
		return
	}
	bids, err := h.svc.ListBids(ginCtx.Request.Context(), listingID)
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			ginCtx.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
			return
		}
		ginCtx.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusOK, gin.H{"bids": bids, "total": len(bids)})
}

func listingIDParam(ginCtx *gin.Context) (int64, error) {
	return strconv.ParseInt(ginCtx.Param("id"), 10, 64)
}
