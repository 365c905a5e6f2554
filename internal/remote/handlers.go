package remote

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/roach88/procount/internal/domain"
	"github.com/roach88/procount/internal/notify"
	"github.com/roach88/procount/internal/syncer"
)

// SyncResponse acknowledges a batch.
type SyncResponse struct {
	Status  string `json:"status"`
	BatchID string `json:"batchId"`
	Applied int    `json:"applied"`
}

// BatchError names the first change that made a batch unacceptable.
type BatchError struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("change %d: %s", e.Index, e.Reason)
}

// checkBatch rejects the whole batch if any change is malformed, belongs to
// another tenant, or carries a digest that does not match its payload.
func checkBatch(tenant string, ops []domain.PendingOperation) error {
	for i, op := range ops {
		switch {
		case !op.ActionType.Valid():
			return &BatchError{i, fmt.Sprintf("unknown action type %q", op.ActionType)}
		case !op.DataType.Valid():
			return &BatchError{i, fmt.Sprintf("unknown data type %q", op.DataType)}
		case op.EntityID == "":
			return &BatchError{i, "missing entity id"}
		case op.TenantID != "" && op.TenantID != tenant:
			return &BatchError{i, "tenant mismatch"}
		}
		if op.Digest == "" {
			continue
		}
		want, err := domain.Digest(domain.DomainOutboxPayload, op.Payload)
		if err != nil {
			return &BatchError{i, "payload is not valid JSON"}
		}
		if want != op.Digest {
			return &BatchError{i, "digest mismatch"}
		}
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleSync(c *gin.Context) {
	var req syncer.Batch
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	tenant, ok := s.tenant(c, req.TenantID)
	if !ok {
		abort(c, http.StatusForbidden, "FORBIDDEN", "tenant does not match token")
		return
	}
	log := s.log.WithFields(logrus.Fields{"tenant_id": tenant, "queue_size": len(req.Changes)})

	if err := checkBatch(tenant, req.Changes); err != nil {
		log.WithError(err).Warn("batch rejected")
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Status:  "error",
			Code:    "INVALID_BATCH",
			Message: err.Error(),
			Details: err,
		})
		return
	}

	batchID, err := s.repo.ApplyBatch(c.Request.Context(), tenant, req.Changes, s.clock.Now())
	if err != nil {
		log.WithError(err).Error("apply batch failed")
		abort(c, http.StatusInternalServerError, "INTERNAL", "failed to apply batch")
		return
	}
	log.WithField("batch_id", batchID).Info("batch applied")
	c.JSON(http.StatusOK, SyncResponse{Status: "ok", BatchID: batchID, Applied: len(req.Changes)})
}

// notificationRequest lets a client without a token name its tenant.
type notificationRequest struct {
	notify.Payload
	TenantID string `json:"tenantId,omitempty"`
}

func (s *Server) handleNotification(c *gin.Context) {
	var req notificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, notify.Result{Message: err.Error()})
		return
	}
	tenant, ok := s.tenant(c, req.TenantID)
	if !ok && c.GetString(ctxTenant) != "" {
		c.JSON(http.StatusForbidden, notify.Result{Message: "tenant does not match token"})
		return
	}
	if err := notify.Validate(req.Payload); err != nil {
		c.JSON(http.StatusBadRequest, notify.Result{Message: err.Error()})
		return
	}

	id, err := s.repo.SaveNotification(c.Request.Context(), tenant, req.Payload, s.clock.Now())
	if err != nil {
		s.log.WithError(err).Error("save notification failed")
		c.JSON(http.StatusInternalServerError, notify.Result{Message: "Server Error"})
		return
	}
	s.log.WithFields(logrus.Fields{"tenant_id": tenant, "channel": req.Type, "record_id": id}).Info("notification queued")
	c.JSON(http.StatusOK, notify.Result{Success: true, Message: "Sent successfully via Server"})
}

func (s *Server) handleListRecords(c *gin.Context) {
	tenant, ok := s.tenant(c, c.Query("tenantId"))
	if !ok {
		abort(c, http.StatusForbidden, "FORBIDDEN", "tenant required")
		return
	}
	dt := domain.DataType(c.Param("dataType"))
	if !dt.Valid() {
		abort(c, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("unknown data type %q", dt))
		return
	}
	recs, err := s.repo.List(c.Request.Context(), tenant, dt)
	if err != nil {
		s.log.WithError(err).Error("list records failed")
		abort(c, http.StatusInternalServerError, "INTERNAL", "failed to list records")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": recs})
}
