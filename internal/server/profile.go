package server

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/billcraft/billcraft/internal/assets"
	profiledomain "github.com/billcraft/billcraft/internal/profile/domain"
	"github.com/gin-gonic/gin"
)

type profilePayload struct {
	BusinessName        string   `json:"businessName"`
	Email               string   `json:"email"`
	Address             string   `json:"address"`
	Phone               string   `json:"phone"`
	Gst                 string   `json:"gst"`
	LogoURL             string   `json:"logoUrl"`
	StampURL            string   `json:"stampUrl"`
	SignatureURL        string   `json:"signatureUrl"`
	SignatureOwnerName  string   `json:"signatureOwnerName"`
	SignatureOwnerTitle string   `json:"signatureOwnerTitle"`
	DefaultTaxPercent   *float64 `json:"defaultTaxPercent"`
}

func (s *Server) UpsertBusinessProfile(c *gin.Context) {
	req, clientRefs, ok := s.bindProfileUpsert(c)
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

	resp, err := s.profileSvc.Upsert(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

// GetMyBusinessProfile treats a missing profile as a normal outcome
// and answers with a null payload rather than an error.
func (s *Server) GetMyBusinessProfile(c *gin.Context) {
	resp, err := s.profileSvc.GetMine(c.Request.Context())
	if err != nil {
		if errors.Is(err, profiledomain.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"data": nil})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpdateBusinessProfile(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	patch, clientRefs, ok := s.bindProfilePatch(c)
	if !ok {
		return
	}

	uploaded, ok := s.saveUploadsIfAny(c)
	if !ok {
		return
	}
	merged := assets.Resolve(uploaded, clientRefs)
	applyProfileRefPatch(&patch, merged, uploaded, clientRefs)

	resp, err := s.profileSvc.Update(c.Request.Context(), id, patch)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) bindProfileUpsert(c *gin.Context) (profiledomain.UpsertProfileRequest, assets.References, bool) {
	if c.ContentType() == "multipart/form-data" {
		form, err := c.MultipartForm()
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return profiledomain.UpsertProfileRequest{}, nil, false
		}
		req, refs := profileUpsertFromForm(form)
		return req, refs, true
	}

	var payload profilePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, invalidRequestError())
		return profiledomain.UpsertProfileRequest{}, nil, false
	}

	req := profiledomain.UpsertProfileRequest{
		BusinessName:        payload.BusinessName,
		Email:               payload.Email,
		Address:             payload.Address,
		Phone:               payload.Phone,
		Gst:                 payload.Gst,
		SignatureOwnerName:  payload.SignatureOwnerName,
		SignatureOwnerTitle: payload.SignatureOwnerTitle,
		DefaultTaxPercent:   payload.DefaultTaxPercent,
	}
	refs := assets.References{
		assets.KindLogo:      payload.LogoURL,
		assets.KindStamp:     payload.StampURL,
		assets.KindSignature: payload.SignatureURL,
	}
	return req, refs, true
}

func profileUpsertFromForm(form *multipart.Form) (profiledomain.UpsertProfileRequest, assets.References) {
	value := func(key string) string {
		if vals, ok := form.Value[key]; ok && len(vals) > 0 {
			return vals[0]
		}
		return ""
	}

	req := profiledomain.UpsertProfileRequest{
		BusinessName:        value("businessName"),
		Email:               value("email"),
		Address:             value("address"),
		Phone:               value("phone"),
		Gst:                 value("gst"),
		SignatureOwnerName:  value("signatureOwnerName"),
		SignatureOwnerTitle: value("signatureOwnerTitle"),
		DefaultTaxPercent:   formFloat(form, "defaultTaxPercent"),
	}
	refs := assets.References{
		assets.KindLogo:      value("logoUrl"),
		assets.KindStamp:     value("stampUrl"),
		assets.KindSignature: value("signatureUrl"),
	}
	return req, refs
}

type profilePatchPayload struct {
	BusinessName        *string  `json:"businessName"`
	Email               *string  `json:"email"`
	Address             *string  `json:"address"`
	Phone               *string  `json:"phone"`
	Gst                 *string  `json:"gst"`
	LogoURL             *string  `json:"logoUrl"`
	StampURL            *string  `json:"stampUrl"`
	SignatureURL        *string  `json:"signatureUrl"`
	SignatureOwnerName  *string  `json:"signatureOwnerName"`
	SignatureOwnerTitle *string  `json:"signatureOwnerTitle"`
	DefaultTaxPercent   *float64 `json:"defaultTaxPercent"`
}

func (s *Server) bindProfilePatch(c *gin.Context) (profiledomain.ProfilePatch, assets.References, bool) {
	if c.ContentType() == "multipart/form-data" {
		form, err := c.MultipartForm()
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return profiledomain.ProfilePatch{}, nil, false
		}

		patch := profiledomain.ProfilePatch{
			BusinessName:        formString(form, "businessName"),
			Email:               formString(form, "email"),
			Address:             formString(form, "address"),
			Phone:               formString(form, "phone"),
			Gst:                 formString(form, "gst"),
			SignatureOwnerName:  formString(form, "signatureOwnerName"),
			SignatureOwnerTitle: formString(form, "signatureOwnerTitle"),
			DefaultTaxPercent:   formFloat(form, "defaultTaxPercent"),
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
		return patch, refs, true
	}

	var payload profilePatchPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, invalidRequestError())
		return profiledomain.ProfilePatch{}, nil, false
	}

	patch := profiledomain.ProfilePatch{
		BusinessName:        payload.BusinessName,
		Email:               payload.Email,
		Address:             payload.Address,
		Phone:               payload.Phone,
		Gst:                 payload.Gst,
		SignatureOwnerName:  payload.SignatureOwnerName,
		SignatureOwnerTitle: payload.SignatureOwnerTitle,
		DefaultTaxPercent:   payload.DefaultTaxPercent,
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

func applyProfileRefPatch(patch *profiledomain.ProfilePatch, merged, uploaded, client assets.References) {
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
