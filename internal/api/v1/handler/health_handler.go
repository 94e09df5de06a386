package handler

import (
	"net/http"

	"simsync/internal/api/v1/dto"
)

// Version is reported by the service banner.
const Version = "1.0.0"

// Root answers with the service banner.
func Root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.BannerResponseDTO{Message: "SimSync API is running!", Version: Version})
}

// Health is the liveness probe.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.HealthResponseDTO{Status: "healthy", Service: "simsync-api"})
}
