package handler

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/pkordes/railbook/internal/domain"
)

// csvHeaders defines the column names written as the first row of any CSV export.
var csvHeaders = []string{
	"booking_id", "status", "booking_date", "journey_date",
	"train_id", "train_name", "source", "destination", "departure_time", "price",
	"passenger_name", "email", "phone",
}

// GetExport handles GET /export.
// It returns one flat row per booking joined with its train.
// Use ?format=csv to receive CSV; default is JSON.
func (s *Server) GetExport(w http.ResponseWriter, r *http.Request) {
	rows := s.reports.Export()

	switch r.URL.Query().Get("format") {
	case "", "json":
		writeJSON(w, http.StatusOK, ListResponse[domain.ExportRow]{Data: rows})
	case "csv":
		writeCSV(w, rows)
	default:
		badRequest(w, "format must be json or csv")
	}
}

// writeCSV encodes rows as an attachment named bookings.csv.
func writeCSV(w http.ResponseWriter, rows []domain.ExportRow) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	// bytes.Buffer writes never fail; csv.Writer errors surface through Error.
	_ = cw.Write(csvHeaders)
	for _, r := range rows {
		_ = cw.Write(exportRowToCSVRecord(r))
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="bookings.csv"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// exportRowToCSVRecord encodes a domain.ExportRow as a flat string slice.
// The price of a booking whose train is gone is left empty.
func exportRowToCSVRecord(r domain.ExportRow) []string {
	price := ""
	if r.TrainName != "" {
		price = strconv.FormatFloat(r.Price, 'f', 2, 64)
	}
	return []string{
		r.BookingID,
		string(r.Status),
		r.BookingDate,
		r.JourneyDate,
		r.TrainID,
		r.TrainName,
		r.Source,
		r.Destination,
		r.DepartureTime,
		price,
		r.PassengerName,
		r.Email,
		r.Phone,
	}
}
