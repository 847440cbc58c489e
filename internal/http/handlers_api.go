package http

import (
	"errors"
	"net/http"
	"sync/atomic"

	"estoque/internal/log"
	"estoque/internal/statistics"
)

// RefreshReasonCreated is sent to open pages after a transaction is recorded here.
const RefreshReasonCreated = "transaction.created"

// handleStatisticsJSON returns the statistics State of a period.
func (s *Server) handleStatisticsJSON(w http.ResponseWriter, r *http.Request) {
	st := s.loadState(r, ParsePeriod(r.URL.Query()))
	writeJSON(w, http.StatusOK, st)
}

// handleCreateTransaction records a movement on local backends, then
// invalidates statistics and refreshes open dashboards.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	if s.writer == nil {
		writeJSONError(w, http.StatusNotImplemented, "transactions are read-only on this backend")
		return
	}

	req, err := ParseTransactionRequest(r)
	if err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	tx, err := s.writer.InsertTransaction(r.Context(), req)
	switch {
	case errors.Is(err, statistics.ErrNotFound):
		writeJSONError(w, http.StatusNotFound, "item not found")
		return
	case err != nil:
		s.logger.ErrorContext(r.Context(), "Failed to save transaction",
			log.NewFields().
				WithOperation("insert").
				WithError(err).
				ToSlice()...)
		writeJSONError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	atomic.AddInt64(&s.appMetrics.transactionsCreated, 1)
	s.logger.InfoContext(r.Context(), "Transaction created",
		log.NewFields().
			WithTransaction(tx.ID, tx.ItemName).
			WithOperation("create").
			ToSlice()...)

	if s.refresher != nil {
		s.refresher.Refresh(r.Context(), RefreshReasonCreated, tx.ID)
	} else {
		s.stats.Invalidate()
	}

	NewHTMXResponse().
		Status(http.StatusCreated).
		TriggerStatisticsRefresh(RefreshReasonCreated, tx.ID).
		Notify(NotificationSuccess, "Transação registrada: "+tx.ItemName).
		JSON(tx).
		Write(w)
}
