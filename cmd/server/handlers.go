package main

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/zfogg/echomatch/internal/apierr"
	"github.com/zfogg/echomatch/internal/match"
	"github.com/zfogg/echomatch/internal/service"
	"github.com/zfogg/echomatch/internal/util"
)

// handleStats serves the Admin API's store-wide counters (spec.md §6).
func handleStats(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := svc.Stats(c.Request.Context())
		if err != nil {
			util.RespondInternalError(c, "failed to read store stats")
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// addRecordingRequest is the multipart form for POST /recordings.
type addRecordingRequest struct {
	Title    string  `form:"title" binding:"required"`
	Artist   string  `form:"artist" binding:"required"`
	Album    string  `form:"album"`
	Duration float64 `form:"duration"`
}

// handleAddRecording accepts an uploaded audio file plus metadata and
// submits it to the ingestion pool (Ingest API, spec.md §6). The pool
// fingerprints and persists it asynchronously; the response carries the
// assigned recording id. No HTTP route exposes ingestion status.
func handleAddRecording(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addRecordingRequest
		if err := c.ShouldBind(&req); err != nil {
			util.RespondBadRequest(c, err.Error())
			return
		}

		fileHeader, err := c.FormFile("file")
		if err != nil {
			util.RespondBadRequest(c, "audio file is required")
			return
		}

		sourcePath, err := util.SaveUploadedFile(fileHeader)
		if err != nil {
			util.RespondInternalError(c, "failed to save uploaded file")
			return
		}
		defer os.Remove(sourcePath)

		meta := service.RecordingMetadata{
			Title:  req.Title,
			Artist: req.Artist,
		}
		if req.Album != "" {
			meta.Album = &req.Album
		}
		if req.Duration > 0 {
			meta.Duration = &req.Duration
		}

		recordingID, err := svc.Add(c.Request.Context(), meta, sourcePath)
		if err != nil {
			respondDomainError(c, err)
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"recording_id": recordingID,
			"status":       "queued",
		})
	}
}

// handleDeleteRecording removes a recording and its fingerprints (Admin
// API, spec.md §6).
func handleDeleteRecording(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := util.ParseIntParam(c.Param("id"))
		if err != nil || id < 0 {
			util.RespondBadRequest(c, "invalid recording id")
			return
		}

		if err := svc.Delete(c.Request.Context(), uint(id)); err != nil {
			respondDomainError(c, err)
			return
		}

		c.Status(http.StatusNoContent)
	}
}

// handleIdentify accepts an uploaded audio clip and returns the best
// matching recording, if any (Identify API, spec.md §6). A clip that
// produces no confident match surfaces as 404, never as a 5xx.
func handleIdentify(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			util.RespondBadRequest(c, "audio file is required")
			return
		}

		sourcePath, err := util.SaveUploadedFile(fileHeader)
		if err != nil {
			util.RespondInternalError(c, "failed to save uploaded file")
			return
		}
		defer os.Remove(sourcePath)

		result, err := svc.Identify(c.Request.Context(), sourcePath)
		if err != nil {
			if errors.Is(err, match.ErrNoMatch) {
				c.JSON(http.StatusNotFound, gin.H{"code": "NO_MATCH", "message": "no matching recording found"})
				return
			}
			respondDomainError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"recording_id":            result.RecordingID,
			"confidence":              result.Confidence,
			"aligned_matches":         result.AlignedMatches,
			"query_fingerprint_count": result.QueryFingerprintCount,
			"processing_time_ms":      result.ProcessingTimeMS,
		})
	}
}

// respondDomainError maps a domain error to its HTTP response: a
// recognized *apierr.APIError carries its own status, everything else
// becomes a 500.
func respondDomainError(c *gin.Context, err error) {
	var apiErr *apierr.APIError
	if errors.As(err, &apiErr) {
		util.RespondWithAPIError(c, apiErr)
		return
	}
	util.RespondInternalError(c, err.Error())
}
