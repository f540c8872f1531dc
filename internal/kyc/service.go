/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package kyc runs the tenant identity verification flow: callback validation, code exchange,
// profile and document retrieval, tenant matching and persistence.
package kyc

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rentroll/kyc/internal/aadhaar"
	"github.com/rentroll/kyc/internal/aadhaar/ekyc"
	"github.com/rentroll/kyc/internal/aadhaar/secureqr"
	"github.com/rentroll/kyc/internal/digilocker/document"
	"github.com/rentroll/kyc/internal/digilocker/oauth"
	"github.com/rentroll/kyc/internal/kyc/model"
	"github.com/rentroll/kyc/internal/kyc/store"
	"github.com/rentroll/kyc/internal/system/config"
	"github.com/rentroll/kyc/internal/system/error/serviceerror"
	"github.com/rentroll/kyc/internal/system/log"
	"github.com/rentroll/kyc/internal/system/utils"
	"github.com/rentroll/kyc/internal/tenant"
	"github.com/rentroll/kyc/internal/verification/crossverify"
	"github.com/rentroll/kyc/internal/verification/fuzzy"
)

const loggerComponentName = "KYCService"

// Defaults applied by NewOptions.
const (
	DefaultXMLEmbedLimit = 50000
	DefaultVerifiedBy    = "digilocker"
)

// Options tunes the verification flow.
type Options struct {
	// XMLEmbedLimit is the size in bytes below which the Aadhaar XML is stored with the record.
	XMLEmbedLimit int
	// VerifiedBy is recorded as the verifying party.
	VerifiedBy string
	// SimulateFailures enables the simulateFailure callback parameter.
	SimulateFailures bool
}

// NewOptions builds Options from the server configuration, applying defaults.
func NewOptions(cfg config.KYCConfig) Options {
	opts := Options{
		XMLEmbedLimit:    cfg.XMLEmbedLimit,
		VerifiedBy:       strings.TrimSpace(cfg.VerifiedBy),
		SimulateFailures: cfg.SimulateFailures,
	}
	if opts.XMLEmbedLimit <= 0 {
		opts.XMLEmbedLimit = DefaultXMLEmbedLimit
	}
	if opts.VerifiedBy == "" {
		opts.VerifiedBy = DefaultVerifiedBy
	}
	return opts
}

// KYCServiceInterface defines the verification operations.
type KYCServiceInterface interface {
	Initiate() (*InitiateResponse, *Result)
	HandleCallback(ctx context.Context, req CallbackRequest) *Result
	Decode(ctx context.Context, payload string) (*aadhaar.DecodedIdentity, *serviceerror.ServiceError)
	CrossVerify(req CrossVerifyRequest) *crossverify.Result
	GetVerification(ctx context.Context, tenantID string) (*model.VerificationRecord, *serviceerror.ServiceError)
}

// kycService is the default implementation of KYCServiceInterface.
type kycService struct {
	oauthService oauth.DigiLockerOAuthServiceInterface
	documents    document.DocumentClientInterface
	decoder      secureqr.DecoderInterface
	tenants      tenant.TenantStoreInterface
	store        store.VerificationStoreInterface
	sealer       *oauth.FlowSealer
	opts         Options
	now          func() time.Time
}

// NewKYCService creates a new instance of kycService. The sealer may be nil, in which case no
// flow tokens are issued.
func NewKYCService(
	oauthService oauth.DigiLockerOAuthServiceInterface,
	documents document.DocumentClientInterface,
	decoder secureqr.DecoderInterface,
	tenants tenant.TenantStoreInterface,
	verificationStore store.VerificationStoreInterface,
	sealer *oauth.FlowSealer,
	opts Options,
) KYCServiceInterface {
	if decoder == nil {
		decoder = secureqr.NewDecoder()
	}
	return &kycService{
		oauthService: oauthService,
		documents:    documents,
		decoder:      decoder,
		tenants:      tenants,
		store:        verificationStore,
		sealer:       sealer,
		opts:         opts,
		now:          time.Now,
	}
}

// Initiate starts an authorization attempt. On failure the returned result carries the error
// envelope.
func (s *kycService) Initiate() (*InitiateResponse, *Result) {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	req, err := s.oauthService.BeginAuthorization()
	if err != nil {
		return nil, s.failure(err, StateInitiated, nil)
	}
	resp := &InitiateResponse{
		State:            req.State,
		AuthorizationURL: req.AuthorizationURL,
		CodeVerifier:     req.CodeVerifier,
		StateCreatedAt:   req.StateCreatedAt,
	}
	if s.sealer != nil {
		resp.FlowToken, err = s.sealer.Seal(oauth.FlowState{
			State:     req.State,
			Verifier:  req.CodeVerifier,
			CreatedAt: req.StateCreatedAt,
		})
		if err != nil {
			logger.Error("Failed to seal flow token", log.Error(err))
			return nil, s.failure(err, StateInitiated, nil)
		}
	}
	logger.Debug("Verification initiated", log.String("state", log.MaskString(req.State)))
	return resp, nil
}

// HandleCallback runs the verification flow for an authorization callback and always returns
// a result envelope.
func (s *kycService) HandleCallback(ctx context.Context, req CallbackRequest) *Result {
	logger := log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName))

	req.TenantID = strings.TrimSpace(req.TenantID)
	f := newFlow(req.TenantID, logger)

	if err := s.resolveCallback(&req); err != nil {
		return s.failure(err, f.state, f.warnings)
	}
	inject := s.injection(req.SimulateFailure, logger)

	v := oauth.ValidateCallback(req.State, req.ExpectedState, req.StateCreatedAt, s.now(),
		s.oauthService.Config().StateTTL)
	if !v.OK {
		return s.failure(f.fail(StageToken, v.Err()), f.state, f.warnings)
	}
	if err := f.advance(StateStateValidated); err != nil {
		return s.failure(f.fail(StageToken, err), f.state, f.warnings)
	}

	if inject == StageToken {
		return s.failure(f.fail(StageToken, &InjectedFailureError{Stage: StageToken}), f.state, f.warnings)
	}
	token, err := s.oauthService.ExchangeCode(ctx, req.Code, req.CodeVerifier)
	if err != nil {
		return s.failure(f.fail(StageToken, err), f.state, f.warnings)
	}
	if err := f.advance(StateCodeExchanged); err != nil {
		return s.failure(f.fail(StageToken, err), f.state, f.warnings)
	}

	if inject == StageProfile {
		return s.failure(f.fail(StageProfile, &InjectedFailureError{Stage: StageProfile}), f.state, f.warnings)
	}
	profile, err := s.oauthService.FetchProfile(ctx, token.AccessToken)
	if err != nil {
		return s.failure(f.fail(StageProfile, err), f.state, f.warnings)
	}
	oauth.EnrichProfile(profile, token)
	if err := f.advance(StateProfileFetched); err != nil {
		return s.failure(f.fail(StageProfile, err), f.state, f.warnings)
	}

	var aadhaarDoc *model.AadhaarDocument
	var identity *aadhaar.DecodedIdentity
	if s.documentsGranted(token) {
		identity, aadhaarDoc = s.fetchAadhaar(ctx, f, token.AccessToken, profile)
		if err := f.advance(StateDocumentsFetched); err != nil {
			return s.failure(f.fail(StageWrite, err), f.state, f.warnings)
		}
	}

	record := s.newRecord(req.TenantID, token, profile, identity, aadhaarDoc)
	validation, err := s.validateAgainstTenant(ctx, req.TenantID, record.Name, profile.Mobile)
	record.Validation = validation
	if err != nil {
		return s.failure(f.fail(StageWrite, err), f.state, f.warnings)
	}
	if err := f.advance(StateValidatedAgainstTenant); err != nil {
		return s.failure(f.fail(StageWrite, err), f.state, f.warnings)
	}

	if inject == StageWrite {
		return s.failure(f.fail(StageWrite, &StorageWriteError{Err: &InjectedFailureError{Stage: StageWrite}}),
			f.state, f.warnings)
	}
	record.Warnings = f.warnings
	if err := s.store.SaveVerification(ctx, record); err != nil {
		return s.failure(f.fail(StageWrite, &StorageWriteError{Err: err}), f.state, f.warnings)
	}
	if err := f.advance(StatePersisted); err != nil {
		return s.failure(f.fail(StageWrite, err), f.state, f.warnings)
	}

	logger.Info("Tenant verified", log.String(log.LoggerKeyTenantID, req.TenantID),
		log.Bool("withAadhaar", record.Aadhaar != nil), log.Int("warnings", len(f.warnings)))
	return &Result{
		HTTPStatus: http.StatusOK,
		Success:    true,
		Stage:      StageWrite,
		State:      f.state,
		Message:    "Verification completed",
		Data:       record,
		Warnings:   f.warnings,
	}
}

// resolveCallback checks required inputs and fills the expected state from the flow token.
func (s *kycService) resolveCallback(req *CallbackRequest) error {
	if req.TenantID == "" {
		return &InputError{ServiceError: ErrorMissingTenantID}
	}
	if strings.TrimSpace(req.Code) == "" {
		return &InputError{ServiceError: ErrorMissingCode}
	}
	if strings.TrimSpace(req.State) == "" {
		return &InputError{ServiceError: ErrorMissingState}
	}
	if req.FlowToken == "" {
		return nil
	}
	if s.sealer == nil {
		return &InputError{ServiceError: ErrorInvalidFlowToken, Err: errors.New("flow tokens are not enabled")}
	}
	fs, err := s.sealer.Open(req.FlowToken)
	if err != nil {
		return &InputError{ServiceError: ErrorInvalidFlowToken, Err: err}
	}
	req.ExpectedState = fs.State
	req.CodeVerifier = fs.Verifier
	req.StateCreatedAt = strconv.FormatInt(fs.CreatedAt, 10)
	return nil
}

// injection returns the stage a simulated failure was requested for.
func (s *kycService) injection(value string, logger *log.Logger) Stage {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return ""
	}
	if !s.opts.SimulateFailures {
		logger.Warn("Ignoring simulated failure request, simulation is disabled", log.String("value", value))
		return ""
	}
	switch stage := Stage(value); stage {
	case StageToken, StageProfile, StageWrite:
		return stage
	default:
		logger.Warn("Ignoring unknown simulated failure", log.String("value", value))
		return ""
	}
}

// documentsGranted reports whether the granted or configured scope allows document access.
func (s *kycService) documentsGranted(token *oauth.TokenPayload) bool {
	for _, scope := range strings.Fields(token.Scope) {
		if scope == ScopeIssuedDocuments || scope == ScopeIssuedAadhaar {
			return true
		}
	}
	return s.oauthService.Config().HasScope(ScopeIssuedDocuments, ScopeIssuedAadhaar)
}

// fetchAadhaar retrieves and decodes the Aadhaar document. Failures are recorded as warnings.
func (s *kycService) fetchAadhaar(ctx context.Context, f *flow, accessToken string, profile *oauth.Profile) (
	*aadhaar.DecodedIdentity, *model.AadhaarDocument) {
	if s.documents == nil {
		return nil, nil
	}

	var (
		doc *document.Document
		uri string
	)
	docs, listErr := s.documents.ListIssuedDocuments(ctx, accessToken)
	if listErr != nil {
		f.warn(&DocumentError{Op: "list", Err: listErr})
	}
	listed := document.FindAadhaarDocument(docs)
	if listed != nil {
		uri = listed.URI
		var err error
		if doc, err = s.documents.FetchDocument(ctx, accessToken, listed.URI); err != nil {
			f.warn(&DocumentError{Op: "fetch", Err: err})
		}
	}
	if doc == nil {
		if listed == nil && listErr == nil && !profile.HasAadhaar() {
			f.logger.Debug("No Aadhaar document issued to the account")
			return nil, nil
		}
		var err error
		if doc, err = s.documents.FetchAadhaarXML(ctx, accessToken); err != nil {
			f.warn(&DocumentError{Op: "fetch eaadhaar", Err: err})
			return nil, nil
		}
		uri = utils.FirstNonEmpty(uri, document.EAadhaarPath)
	}
	if doc.Type != document.KindXML {
		f.warn(&DocumentError{Op: "decode", Err: fmt.Errorf("unsupported %s content %q", doc.Type, doc.ContentType)})
		return nil, &model.AadhaarDocument{DocumentURI: uri, Source: string(doc.Type)}
	}

	identity := ekyc.Parse(doc.Text)
	if identity.ParseError != "" {
		f.warn(&DocumentError{Op: "decode", Err: errors.New(identity.ParseError)})
	}
	ad := &model.AadhaarDocument{
		AadhaarNumber: identity.AadhaarNumber,
		Name:          identity.Name,
		DOB:           identity.DOB,
		Gender:        identity.Gender,
		Address:       identity.Address,
		Pincode:       identity.Pincode,
		DocumentURI:   uri,
		Source:        string(identity.Source),
		Verified:      identity.ParseError == "" && identity.HasProofOfIdentity,
		XMLSize:       len(doc.Text),
	}
	if len(doc.Text) < s.opts.XMLEmbedLimit {
		ad.XMLContentBase64 = base64.StdEncoding.EncodeToString([]byte(doc.Text))
	}
	f.logger.Debug("Aadhaar document decoded", log.String("aadhaarNumber", log.MaskString(ad.AadhaarNumber)),
		log.Int("xmlSize", ad.XMLSize), log.Bool("embedded", ad.XMLContentBase64 != ""))
	return identity, ad
}

func (s *kycService) newRecord(tenantID string, token *oauth.TokenPayload, profile *oauth.Profile,
	identity *aadhaar.DecodedIdentity, ad *model.AadhaarDocument) *model.VerificationRecord {
	record := &model.VerificationRecord{
		TenantID:        tenantID,
		Verified:        true,
		VerifiedBy:      s.opts.VerifiedBy,
		VerifiedAt:      s.now().UTC(),
		Name:            profile.Name,
		DOB:             profile.DOB,
		Gender:          profile.Gender,
		DigilockerID:    profile.DigiLockerID,
		DigilockerTxnID: token.TransactionID,
		Aadhaar:         ad,
	}
	if identity != nil && identity.ParseError == "" {
		record.Name = utils.FirstNonEmpty(identity.Name, record.Name)
		record.DOB = utils.FirstNonEmpty(identity.DOB, record.DOB)
		record.Gender = utils.FirstNonEmpty(identity.Gender, record.Gender)
		record.Address = identity.Address
	}
	return record
}

// validateAgainstTenant checks that the verified identity belongs to the tenant. The
// pre-filled profile name takes priority over the stored tenant name.
func (s *kycService) validateAgainstTenant(ctx context.Context, tenantID, verifiedName, verifiedPhone string) (
	*model.TenantValidation, error) {
	t, err := s.tenants.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	profile, err := s.tenants.GetProfile(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	v := &model.TenantValidation{
		ExpectedName: t.Name,
		VerifiedName: verifiedName,
		NameSource:   model.NameSourceTenant,
	}
	if name := profile.FullName(); name != "" {
		v.ExpectedName = name
		v.NameSource = model.NameSourceProfile
	}
	v.NameScore = fuzzy.Similarity(v.ExpectedName, verifiedName)
	v.NameMatched = v.NameScore >= fuzzy.MatchThreshold
	if !v.NameMatched {
		return v, &NameMismatchError{Expected: v.ExpectedName, Actual: verifiedName, Source: v.NameSource,
			Score: v.NameScore}
	}

	expectedPhone := t.Phone
	if profile != nil && profile.PhoneNumber != "" {
		expectedPhone = profile.PhoneNumber
	}
	if expectedPhone != "" && verifiedPhone != "" {
		v.PhoneChecked = true
		v.PhoneMatched = phoneMatches(expectedPhone, verifiedPhone)
		if !v.PhoneMatched {
			return v, &PhoneMismatchError{
				Expected: log.MaskString(fuzzy.NormalizePhone(expectedPhone)),
				Actual:   log.MaskString(verifiedPhone),
			}
		}
	}
	return v, nil
}

// phoneMatches compares subscriber numbers. A masked provider number matches when its visible
// digits, at least four, end the tenant number.
func phoneMatches(expected, verified string) bool {
	if utils.ContainsAnyFold(verified, "x", "*") {
		visible := utils.DigitsOnly(verified)
		return len(visible) >= 4 && strings.HasSuffix(fuzzy.NormalizePhone(expected), visible)
	}
	return fuzzy.PhoneSuffixMatch(expected, verified)
}

// failure builds the error envelope for err.
func (s *kycService) failure(err error, state State, warnings []string) *Result {
	svcErr, status, retryable := describe(err)
	res := &Result{
		HTTPStatus: status,
		Success:    false,
		Stage:      stageFor(err),
		State:      state,
		Code:       svcErr.Code,
		Message:    svcErr.ErrorDescription,
		Retryable:  retryable,
		Warnings:   warnings,
	}
	var configErr *oauth.ConfigError
	if errors.As(err, &configErr) {
		res.Missing = configErr.Fields
	}
	if svcErr.Code != ErrorInternalServerError.Code {
		if detail := rootMessage(err); detail != "" && detail != res.Message {
			res.Message += ": " + detail
		}
	}
	return res
}

// rootMessage returns the message of the cause a flow failed with.
func rootMessage(err error) string {
	var inputErr *InputError
	if errors.As(err, &inputErr) {
		if inputErr.Err == nil {
			return ""
		}
		return inputErr.Err.Error()
	}
	var flowErr *FlowError
	if errors.As(err, &flowErr) {
		err = flowErr.Err
	}
	return err.Error()
}

// Decode decodes a Secure QR or XML payload.
func (s *kycService) Decode(ctx context.Context, payload string) (*aadhaar.DecodedIdentity,
	*serviceerror.ServiceError) {
	if strings.TrimSpace(payload) == "" {
		return nil, &ErrorMissingPayload
	}
	identity, err := s.decoder.DecodeContext(ctx, payload)
	if err != nil {
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
			Error("Payload decode aborted", log.Error(err))
		return nil, &ErrorInternalServerError
	}
	return identity, nil
}

// CrossVerify compares a decoded identity with OCR and typed data.
func (s *kycService) CrossVerify(req CrossVerifyRequest) *crossverify.Result {
	return crossverify.CrossVerify(req.QR, req.OCR, req.Typed)
}

// GetVerification returns the stored verification of a tenant.
func (s *kycService) GetVerification(ctx context.Context, tenantID string) (*model.VerificationRecord,
	*serviceerror.ServiceError) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, &ErrorMissingTenantID
	}
	record, err := s.store.GetVerification(ctx, tenantID)
	if err != nil {
		if errors.Is(err, store.ErrVerificationNotFound) {
			return nil, &ErrorVerificationNotFound
		}
		log.GetLogger().With(log.String(log.LoggerKeyComponentName, loggerComponentName)).
			Error("Failed to read verification", log.String(log.LoggerKeyTenantID, tenantID), log.Error(err))
		return nil, &ErrorInternalServerError
	}
	return record, nil
}
