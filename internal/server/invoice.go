package server

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/billcraft/billcraft/internal/assets"
	invoicedomain "github.com/billcraft/billcraft/internal/invoice/domain"
	"github.com/billcraft/billcraft/internal/invoice/totals"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// invoicePayload is the JSON create body. Items may arrive as an array
// or as a serialized string of one; both are tolerated.
type invoicePayload struct {
	InvoiceNumber    string                   `json:"invoiceNumber"`
	IssueDate        string                   `json:"issueDate"`
	DueDate          string                   `json:"dueDate"`
	FromBusinessName string                   `json:"fromBusinessName"`
	FromEmail        string                   `json:"fromEmail"`
	FromAddress      string                   `json:"fromAddress"`
	FromPhone        string                   `json:"fromPhone"`
	FromGst          string                   `json:"fromGst"`
	Client           invoicedomain.ClientInfo `json:"client"`
	Items            json.RawMessage          `json:"items"`
	Currency         string                   `json:"currency"`
	Status           string                   `json:"status"`
	TaxPercent       *float64                 `json:"taxPercent"`
	LogoURL          string                   `json:"logoUrl"`
	StampURL         string                   `json:"stampUrl"`
	SignatureURL     string                   `json:"signatureUrl"`
	SignatureName    string                   `json:"signatureName"`
	SignatureTitle   string                   `json:"signatureTitle"`
	Notes            string                   `json:"notes"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	req, clientRefs, ok := s.bindInvoiceCreate(c)
	if !ok {
		return
	}

	refs, ok := s.resolveUploads(c, clientRefs)
	if !ok {
		return
	}
	req.LogoURL = refs[assets.KindLogo]
	req.StampURL = refs[assets.KindStamp]
	req.SignatureURL = refs[assets.KindSignature]

	resp, err := s.invoiceSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ListInvoices(c *gin.Context) {
	resp, err := s.invoiceSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetInvoice(c *gin.Context) {
	candidate := strings.TrimSpace(c.Param("idOrNumber"))
	resp, err := s.invoiceSvc.GetByIdentifier(c.Request.Context(), candidate)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	candidate := strings.TrimSpace(c.Param("idOrNumber"))

	patch, clientRefs, ok := s.bindInvoicePatch(c)
	if !ok {
		return
	}

	uploaded, ok := s.saveUploadsIfAny(c)
	if !ok {
		return
	}
	// A fresh upload always overrides a client-supplied reference.
	applyRefPatch(&patch, assets.Resolve(uploaded, clientRefs), uploaded, clientRefs)

	resp, err := s.invoiceSvc.Update(c.Request.Context(), candidate, patch)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	candidate := strings.TrimSpace(c.Param("idOrNumber"))
	if err := s.invoiceSvc.Delete(c.Request.Context(), candidate); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) bindInvoiceCreate(c *gin.Context) (invoicedomain.CreateInvoiceRequest, assets.References, bool) {
	if c.ContentType() == "multipart/form-data" {
		form, err := c.MultipartForm()
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return invoicedomain.CreateInvoiceRequest{}, nil, false
		}
		req, refs := invoiceCreateFromForm(form)
		return req, refs, true
	}

	var payload invoicePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, invalidRequestError())
		return invoicedomain.CreateInvoiceRequest{}, nil, false
	}

	req := invoicedomain.CreateInvoiceRequest{
		InvoiceNumber:    payload.InvoiceNumber,
		IssueDate:        payload.IssueDate,
		DueDate:          payload.DueDate,
		FromBusinessName: payload.FromBusinessName,
		FromEmail:        payload.FromEmail,
		FromAddress:      payload.FromAddress,
		FromPhone:        payload.FromPhone,
		FromGst:          payload.FromGst,
		Client:           payload.Client,
		Items:            totals.DecodeItems(payload.Items),
		Currency:         payload.Currency,
		Status:           payload.Status,
		TaxPercent:       payload.TaxPercent,
		SignatureName:    payload.SignatureName,
		SignatureTitle:   payload.SignatureTitle,
		Notes:            payload.Notes,
	}
	refs := assets.References{
		assets.KindLogo:      payload.LogoURL,
		assets.KindStamp:     payload.StampURL,
		assets.KindSignature: payload.SignatureURL,
	}
	return req, refs, true
}

func invoiceCreateFromForm(form *multipart.Form) (invoicedomain.CreateInvoiceRequest, assets.References) {
	value := func(key string) string {
		if vals, ok := form.Value[key]; ok && len(vals) > 0 {
			return vals[0]
		}
		return ""
	}

	var client invoicedomain.ClientInfo
	if raw := value("client"); raw != "" {
		// Malformed client blobs degrade to an empty client.
		_ = json.Unmarshal([]byte(raw), &client)
	}

	var taxPercent *float64
	if raw := strings.TrimSpace(value("taxPercent")); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			taxPercent = &parsed
		}
	}

	req := invoicedomain.CreateInvoiceRequest{
		InvoiceNumber:    value("invoiceNumber"),
		IssueDate:        value("issueDate"),
		DueDate:          value("dueDate"),
		FromBusinessName: value("fromBusinessName"),
		FromEmail:        value("fromEmail"),
		FromAddress:      value("fromAddress"),
		FromPhone:        value("fromPhone"),
		FromGst:          value("fromGst"),
		Client:           client,
		Items:            totals.DecodeItemsString(value("items")),
		Currency:         value("currency"),
		Status:           value("status"),
		TaxPercent:       taxPercent,
		SignatureName:    value("signatureName"),
		SignatureTitle:   value("signatureTitle"),
		Notes:            value("notes"),
	}
	refs := assets.References{
		assets.KindLogo:      value("logoUrl"),
		assets.KindStamp:     value("stampUrl"),
		assets.KindSignature: value("signatureUrl"),
	}
	return req, refs
}

// invoicePatchPayload is the JSON partial-update body; absent fields
// stay untouched.
type invoicePatchPayload struct {
	InvoiceNumber    *string                   `json:"invoiceNumber"`
	IssueDate        *string                   `json:"issueDate"`
	DueDate          *string                   `json:"dueDate"`
	FromBusinessName *string                   `json:"fromBusinessName"`
	FromEmail        *string                   `json:"fromEmail"`
	FromAddress      *string                   `json:"fromAddress"`
	FromPhone        *string                   `json:"fromPhone"`
	FromGst          *string                   `json:"fromGst"`
	Client           *invoicedomain.ClientInfo `json:"client"`
	Items            json.RawMessage           `json:"items"`
	Currency         *string                   `json:"currency"`
	Status           *string                   `json:"status"`
	TaxPercent       *float64                  `json:"taxPercent"`
	LogoURL          *string                   `json:"logoUrl"`
	StampURL         *string                   `json:"stampUrl"`
	SignatureURL     *string                   `json:"signatureUrl"`
	SignatureName    *string                   `json:"signatureName"`
	SignatureTitle   *string                   `json:"signatureTitle"`
	Notes            *string                   `json:"notes"`
}

func (s *Server) bindInvoicePatch(c *gin.Context) (invoicedomain.InvoicePatch, assets.References, bool) {
	if c.ContentType() == "multipart/form-data" {
		form, err := c.MultipartForm()
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return invoicedomain.InvoicePatch{}, nil, false
		}
		patch, refs := invoicePatchFromForm(form)
		return patch, refs, true
	}

	var payload invoicePatchPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, invalidRequestError())
		return invoicedomain.InvoicePatch{}, nil, false
	}

	patch := invoicedomain.InvoicePatch{
		InvoiceNumber:    payload.InvoiceNumber,
		IssueDate:        payload.IssueDate,
		DueDate:          payload.DueDate,
		FromBusinessName: payload.FromBusinessName,
		FromEmail:        payload.FromEmail,
		FromAddress:      payload.FromAddress,
		FromPhone:        payload.FromPhone,
		FromGst:          payload.FromGst,
		Client:           payload.Client,
		Currency:         payload.Currency,
		Status:           payload.Status,
		TaxPercent:       payload.TaxPercent,
		SignatureName:    payload.SignatureName,
		SignatureTitle:   payload.SignatureTitle,
		Notes:            payload.Notes,
	}
	if len(payload.Items) > 0 && strings.TrimSpace(string(payload.Items)) != "null" {
		items := totals.DecodeItems(payload.Items)
		patch.Items = &items
	}

	refs := assets.References{}
	if payload.LogoURL != nil {
		refs[assets.KindLogo] = *payload.LogoURL
	}
	if payload.StampURL != nil {
		refs[assets.KindStamp] = *payload.StampURL
	}
	if payload.SignatureURL != nil {
		refs[assets.KindSignature] = *payload.SignatureURL
	}
	return patch, refs, true
}

func invoicePatchFromForm(form *multipart.Form) (invoicedomain.InvoicePatch, assets.References) {
	patch := invoicedomain.InvoicePatch{
		InvoiceNumber:    formString(form, "invoiceNumber"),
		IssueDate:        formString(form, "issueDate"),
		DueDate:          formString(form, "dueDate"),
		FromBusinessName: formString(form, "fromBusinessName"),
		FromEmail:        formString(form, "fromEmail"),
		FromAddress:      formString(form, "fromAddress"),
		FromPhone:        formString(form, "fromPhone"),
		FromGst:          formString(form, "fromGst"),
		Currency:         formString(form, "currency"),
		Status:           formString(form, "status"),
		TaxPercent:       formFloat(form, "taxPercent"),
		SignatureName:    formString(form, "signatureName"),
		SignatureTitle:   formString(form, "signatureTitle"),
		Notes:            formString(form, "notes"),
	}

	if raw := formString(form, "client"); raw != nil {
		var client invoicedomain.ClientInfo
		if err := json.Unmarshal([]byte(*raw), &client); err == nil {
			patch.Client = &client
		}
	}
	if raw := formString(form, "items"); raw != nil {
		items := totals.DecodeItemsString(*raw)
		patch.Items = &items
	}

	refs := assets.References{}
	if v := formString(form, "logoUrl"); v != nil {
		refs[assets.KindLogo] = *v
	}
	if v := formString(form, "stampUrl"); v != nil {
		refs[assets.KindStamp] = *v
	}
	if v := formString(form, "signatureUrl"); v != nil {
		refs[assets.KindSignature] = *v
	}
	return patch, refs
}

func formString(form *multipart.Form, key string) *string {
	if vals, ok := form.Value[key]; ok && len(vals) > 0 {
		v := vals[0]
		return &v
	}
	return nil
}

func formFloat(form *multipart.Form, key string) *float64 {
	raw := formString(form, key)
	if raw == nil {
		return nil
	}
	parsed, err := strconv.ParseFloat(strings.TrimSpace(*raw), 64)
	if err != nil {
		return nil
	}
	return &parsed
}

// resolveUploads merges uploaded file references over client-supplied
// ones for the create path.
func (s *Server) resolveUploads(c *gin.Context, clientRefs assets.References) (assets.References, bool) {
	uploaded, ok := s.saveUploadsIfAny(c)
	if !ok {
		return nil, false
	}
	return assets.Resolve(uploaded, clientRefs), true
}

func (s *Server) saveUploadsIfAny(c *gin.Context) (assets.References, bool) {
	if c.ContentType() != "multipart/form-data" {
		return assets.References{}, true
	}

	form, err := c.MultipartForm()
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return nil, false
	}

	uploaded, err := s.assets.SaveUploads(form)
	if err != nil {
		s.log.Error("storing uploads failed", zap.Error(err))
		AbortWithError(c, err)
		return nil, false
	}
	return uploaded, true
}

// applyRefPatch folds resolved references into the patch: an uploaded
// kind is always set; a client-sent kind keeps its patch pointer.
func applyRefPatch(patch *invoicedomain.InvoicePatch, merged, uploaded, client assets.References) {
	setIf := func(dst **string, kind assets.Kind) {
		if _, ok := uploaded[kind]; ok {
			v := merged[kind]
			*dst = &v
			return
		}
		if _, ok := client[kind]; ok {
			v := merged[kind]
			*dst = &v
		}
	}
	setIf(&patch.LogoURL, assets.KindLogo)
	setIf(&patch.StampURL, assets.KindStamp)
	setIf(&patch.SignatureURL, assets.KindSignature)
}
