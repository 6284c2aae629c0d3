package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"

	"github.com/Veraticus/finnet/internal/model"
)

type xmlReturn struct {
	XMLName      xml.Name         `xml:"finnetReturn"`
	BatchID      string           `xml:"batchId,attr,omitempty"`
	GeneratedAt  string           `xml:"generatedAt,attr"`
	RecordCount  int              `xml:"recordCount,attr"`
	Transactions []xmlTransaction `xml:"transaction"`
}

type xmlTransaction struct {
	ID              string `xml:"id,attr"`
	AccountNo       string `xml:"accountNo"`
	Date            string `xml:"date"`
	Currency        string `xml:"currency"`
	Amount          string `xml:"amount"`
	ITRSCode        string `xml:"itrsCode"`
	Description     string `xml:"description"`
	Category        string `xml:"category"`
	Tier            string `xml:"tier"`
	RiskLevel       string `xml:"riskLevel,omitempty"`
	ReviewStatus    string `xml:"reviewStatus"`
	AdvisoryFailure string `xml:"advisoryFailure,omitempty"`
	RiskFlag        bool   `xml:"riskFlag"`
}

// WriteXML writes results as an indented XML return document.
func WriteXML(w io.Writer, batchID string, generatedAt time.Time, results []model.ClassificationResult) error {
	doc := xmlReturn{
		BatchID:      batchID,
		GeneratedAt:  generatedAt.UTC().Format(time.RFC3339),
		RecordCount:  len(results),
		Transactions: make([]xmlTransaction, 0, len(results)),
	}

	for _, r := range results {
		doc.Transactions = append(doc.Transactions, xmlTransaction{
			ID:              r.TransactionID,
			AccountNo:       r.AccountID,
			Date:            formatDate(r.Date),
			Currency:        r.Currency,
			Amount:          r.Amount.StringFixed(2),
			ITRSCode:        r.RegulatoryCode,
			Description:     r.OriginalDescription,
			Category:        r.Category,
			Tier:            string(r.ResolutionTier),
			RiskLevel:       string(r.RiskLevel),
			ReviewStatus:    string(r.ReviewStatus),
			AdvisoryFailure: string(r.AdvisoryFailure),
			RiskFlag:        r.RiskFlag,
		})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write XML header: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode XML return: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode XML return: %w", err)
	}

	_, err := io.WriteString(w, "\n")
	return err
}
