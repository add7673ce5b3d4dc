package httpapi

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"outbound-dialer/internal/leads"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handlers) ListLeads(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"leads": s.Leads.List()})
}

type addLeadRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

func (h *Handlers) AddLead(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req addLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Missing information", "Please fill in first name, last name, and phone number.")
		return
	}
	l, err := s.Leads.Add(leads.Lead{FirstName: req.FirstName, LastName: req.LastName, Email: req.Email, PhoneNumber: req.PhoneNumber})
	if err != nil {
		fail(c, s, "Missing information", err)
		return
	}
	s.Notify.Info("Lead added", fmt.Sprintf("%s has been added to your leads.", l.FullName()))
	c.JSON(http.StatusCreated, l)
}

func (h *Handlers) RemoveLead(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Leads.Remove(c.Param("id")); err != nil {
		fail(c, nil, "Error", err)
		return
	}
	s.Notify.Info("Lead removed", "The lead has been removed from your list.")
	c.Status(http.StatusNoContent)
}

type importTextRequest struct {
	Text string `json:"text"`
}

// ImportText appends leads pasted as comma-separated lines.
func (h *Handlers) ImportText(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req importTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "No valid leads found", "Please check your data format and try again.")
		return
	}
	rep, err := s.Leads.ImportDelimitedText(req.Text)
	if err != nil {
		fail(c, s, "No valid leads found", err)
		return
	}
	s.Notify.Info("Bulk import successful", fmt.Sprintf("%d leads have been imported.", len(rep.Added)))
	c.JSON(http.StatusOK, rep)
}

// ImportFile reads a multipart "file" field. The extension picks the parser.
func (h *Handlers) ImportFile(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "No file selected", "Please choose a CSV or XLSX file.")
		return
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext != ".csv" && ext != ".xlsx" {
		s.Notify.Error("Invalid file type", "Please upload a CSV file.")
		badRequest(c, "Invalid file type", "Please upload a CSV file.")
		return
	}

	f, err := fh.Open()
	if err != nil {
		fail(c, s, "Import failed", err)
		return
	}
	defer f.Close()

	var rep leads.ImportReport
	if ext == ".xlsx" {
		rep, err = s.Leads.ImportXLSX(f)
	} else {
		rep, err = s.Leads.ImportCSV(f)
	}
	if err != nil {
		fail(c, s, "Import failed", err)
		return
	}
	s.Notify.Info("CSV import successful", fmt.Sprintf("%d leads have been imported from CSV.", len(rep.Added)))
	c.JSON(http.StatusOK, rep)
}

func (h *Handlers) ExportCSV(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="leads.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	if err := leads.WriteCSV(c.Writer, s.Leads.List()); err != nil {
		_ = c.Error(err)
	}
}

func (h *Handlers) TemplateXLSX(c *gin.Context) {
	if _, ok := h.session(c); !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="leads_template.xlsx"`)
	c.Header("Content-Type", xlsxContentType)
	c.Status(http.StatusOK)
	if err := leads.ExportTemplateXLSX(c.Writer); err != nil {
		_ = c.Error(err)
	}
}

// CallLead places one call outside any bulk run.
func (h *Handlers) CallLead(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	l, err := s.Leads.Get(c.Param("id"))
	if err != nil {
		fail(c, nil, "Call failed", err)
		return
	}
	a := s.Caller.Call(c.Request.Context(), l, "single")
	if a.Err != nil {
		// The caller already notified.
		fail(c, nil, "Call failed", a.Err)
		return
	}
	l, _ = s.Leads.Get(l.ID)
	c.JSON(http.StatusOK, gin.H{"callId": a.CallID, "lead": l})
}
