package httptransport

import (
	"net/http"
	"net/url"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"portal/internal/login/store"
	"portal/internal/marketplace"
	"portal/internal/platform/logger"
	"portal/internal/platform/metrics"
	"portal/internal/registration/models"
	"portal/internal/registration/registry"
	"portal/internal/registration/submission"
	"portal/internal/registration/submission/mocks"
	tu "portal/pkg/testutil"
)

type RegistrationHandlerSuite struct {
	suite.Suite
	ctrl          *gomock.Controller
	mockRegistrar *mocks.MockRegistrar
	drafts        *registry.Registry
	router        http.Handler
}

func TestRegistrationHandlerSuite(t *testing.T) {
	suite.Run(t, new(RegistrationHandlerSuite))
}

func (s *RegistrationHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.mockRegistrar = mocks.NewMockRegistrar(s.ctrl)
	log := logger.Discard()
	m := metrics.New(prometheus.NewRegistry())
	s.drafts = registry.New(s.mockRegistrar, registry.WithLogger(log), registry.WithMetrics(m))
	s.router = NewRouter(
		RouterConfig{Logger: log},
		NewRegistrationHandler(s.drafts, log, 1<<10),
		NewLoginHandler(nil, store.NewInMemorySessionStore(0), log, m),
	)
}

func (s *RegistrationHandlerSuite) create() DraftResponse {
	rr := tu.DoRequest(s.router, tu.NewRequest(s.T(), http.MethodPost, "/v1/registrations"))
	s.Require().Equal(http.StatusCreated, rr.Code)
	return *tu.UnmarshalResponse[DraftResponse](s.T(), rr)
}

func (s *RegistrationHandlerSuite) path(resp DraftResponse, suffix string) string {
	return "/v1/registrations/" + resp.DraftID.String() + suffix
}

func (s *RegistrationHandlerSuite) put(path string, body any) DraftResponse {
	rr := tu.DoRequest(s.router, tu.NewJSONRequest(s.T(), http.MethodPut, path, body))
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	return *tu.UnmarshalResponse[DraftResponse](s.T(), rr)
}

func (s *RegistrationHandlerSuite) fillValid(d DraftResponse) {
	for field, value := range map[string]string{
		"name":            "Pokhara Depot",
		"contactPerson":   "Ram Gurung",
		"email":           "depot@example.com",
		"phone":           "98-1234-5678",
		"password":        "Secret1",
		"confirmPassword": "Secret1",
		"region":          "Gandaki",
	} {
		s.put(s.path(d, "/fields/"+field), map[string]string{"value": value})
	}
	s.put(s.path(d, "/address/state"), map[string]string{"value": "Gandaki"})
	s.put(s.path(d, "/address/pincode"), map[string]string{"value": "33700"})
}

func (s *RegistrationHandlerSuite) TestCreateAppliesDefaults() {
	d := s.create()

	s.False(d.DraftID.IsNil())
	s.Equal(submission.StateIdle, d.State)
	s.Equal(100, d.Draft.OperationalDetails.Capacity)
	s.Equal("09:00", d.Draft.OperationalDetails.WorkingHours.Start)
	s.Equal([]models.Service{models.ServiceStorage, models.ServiceDistribution}, d.Draft.Services)
	s.Len(d.Draft.OperationalDetails.WorkingDays, 5)
	s.False(d.PasswordSet)
}

func (s *RegistrationHandlerSuite) TestGetUnknownAndMalformedIDs() {
	rr := tu.DoRequest(s.router, tu.NewRequest(s.T(), http.MethodGet, "/v1/registrations/6f1c2a3e-8d4b-4a55-9e0f-0123456789ab"))
	tu.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")

	rr = tu.DoRequest(s.router, tu.NewRequest(s.T(), http.MethodGet, "/v1/registrations/not-a-uuid"))
	tu.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
}

func (s *RegistrationHandlerSuite) TestFieldEditsAreFiltered() {
	d := s.create()

	got := s.put(s.path(d, "/fields/phone"), map[string]string{"value": "+977 981-234-5678"})
	s.Equal("9812345678", got.Draft.Phone)

	got = s.put(s.path(d, "/address/pincode"), map[string]string{"value": "44a60012"})
	s.Equal("446001", got.Draft.Address.Pincode)

	got = s.put(s.path(d, "/fields/password"), map[string]string{"value": "Secret1"})
	s.True(got.PasswordSet)
	s.NotContains(tu.DoRequest(s.router, tu.NewRequest(s.T(), http.MethodGet, s.path(d, ""))).Body.String(), "Secret1")
}

func (s *RegistrationHandlerSuite) TestUnknownFieldAndBadValues() {
	d := s.create()

	rr := tu.DoRequest(s.router, tu.NewJSONRequest(s.T(), http.MethodPut, s.path(d, "/fields/nickname"), map[string]string{"value": "x"}))
	tu.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")

	rr = tu.DoRequest(s.router, tu.NewJSONRequest(s.T(), http.MethodPut, s.path(d, "/fields/region"), map[string]string{"value": "Atlantis"}))
	tu.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")

	rr = tu.DoRequest(s.router, tu.NewJSONRequest(s.T(), http.MethodPut, s.path(d, "/fields/name"), map[string]string{}))
	tu.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")

	rr = tu.DoRequest(s.router, tu.NewRequestWithBody(s.T(), http.MethodPut, s.path(d, "/fields/name"), "{"))
	tu.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *RegistrationHandlerSuite) TestOperationalEdits() {
	d := s.create()

	got := s.put(s.path(d, "/operational/capacity"), map[string]int{"value": 250})
	s.Equal(250, got.Draft.OperationalDetails.Capacity)
	s.Equal("09:00", got.Draft.OperationalDetails.WorkingHours.Start, "siblings preserved")

	got = s.put(s.path(d, "/operational/working-hours"), map[string]string{"start": "07:30", "end": "20:00"})
	s.Equal(models.WorkingHours{Start: "07:30", End: "20:00"}, got.Draft.OperationalDetails.WorkingHours)
	s.Equal(250, got.Draft.OperationalDetails.Capacity)

	rr := tu.DoRequest(s.router, tu.NewJSONRequest(s.T(), http.MethodPut, s.path(d, "/operational/working-hours"), map[string]string{"start": "7am", "end": "20:00"}))
	tu.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
}

func (s *RegistrationHandlerSuite) TestArrayToggles() {
	d := s.create()

	rr := tu.DoRequest(s.router, tu.NewRequest(s.T(), http.MethodPut, s.path(d, "/arrays/services/"+url.PathEscape("Cold Storage"))))
	s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
	got := tu.UnmarshalResponse[DraftResponse](s.T(), rr)
	s.Equal([]models.Service{models.ServiceStorage, models.ServiceDistribution, models.ServiceColdStorage}, got.Draft.Services)

	rr = tu.DoRequest(s.router, tu.NewRequest(s.T(), http.MethodDelete, s.path(d, "/arrays/services/Storage")))
	got = tu.UnmarshalResponse[DraftResponse](s.T(), rr)
	s.Equal([]models.Service{models.ServiceDistribution, models.ServiceColdStorage}, got.Draft.Services)

	rr = tu.DoRequest(s.router, tu.NewRequest(s.T(), http.MethodPut, s.path(d, "/arrays/operationalDetails.workingDays/Sunday")))
	got = tu.UnmarshalResponse[DraftResponse](s.T(), rr)
	s.Equal(models.Sunday, got.Draft.OperationalDetails.WorkingDays[len(got.Draft.OperationalDetails.WorkingDays)-1])

	rr = tu.DoRequest(s.router, tu.NewRequest(s.T(), http.MethodPut, s.path(d, "/arrays/documents/x")))
	tu.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
}

func (s *RegistrationHandlerSuite) TestDocuments() {
	d := s.create()
	pdf := []byte("%PDF-1.4\n%fake")

	rr := tu.DoRequest(s.router, tu.NewUploadRequest(s.T(), s.path(d, "/documents"), "file", "license.pdf", "application/pdf", pdf))
	s.Require().Equal(http.StatusCreated, rr.Code, rr.Body.String())
	doc := tu.UnmarshalResponse[DocumentResponse](s.T(), rr)
	s.Equal(0, doc.Index)
	s.Equal("license.pdf", doc.Document.Name)
	s.Equal(int64(len(pdf)), doc.Document.Size)

	rr = tu.DoRequest(s.router, tu.NewUploadRequest(s.T(), s.path(d, "/documents"), "file", "license.pdf", "application/pdf", pdf))
	s.Require().Equal(http.StatusCreated, rr.Code)
	s.Equal(1, tu.UnmarshalResponse[DocumentResponse](s.T(), rr).Index, "same name is a separate attachment")

	rr = tu.DoRequest(s.router, tu.NewUploadRequest(s.T(), s.path(d, "/documents"), "file", "notes.txt", "text/plain", []byte("hello")))
	tu.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")

	rr = tu.DoRequest(s.router, tu.NewRequest(s.T(), http.MethodDelete, s.path(d, "/documents/0")))
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Len(tu.UnmarshalResponse[DraftResponse](s.T(), rr).Draft.Documents, 1)

	rr = tu.DoRequest(s.router, tu.NewRequest(s.T(), http.MethodDelete, s.path(d, "/documents/5")))
	tu.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")

	rr = tu.DoRequest(s.router, tu.NewRequest(s.T(), http.MethodDelete, s.path(d, "/documents/first")))
	tu.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
}

func (s *RegistrationHandlerSuite) TestUploadTooLarge() {
	d := s.create()
	big := make([]byte, 4<<10)

	rr := tu.DoRequest(s.router, tu.NewUploadRequest(s.T(), s.path(d, "/documents"), "file", "scan.png", "image/png", big))
	tu.AssertStatus(s.T(), rr, http.StatusBadRequest)
}

func (s *RegistrationHandlerSuite) TestSubmitViolation() {
	d := s.create()
	s.fillValid(d)
	s.put(s.path(d, "/operational/capacity"), map[string]int{"value": 0})
	s.mockRegistrar.EXPECT().Register(gomock.Any(), gomock.Any()).Times(0)

	rr := tu.DoRequest(s.router, tu.NewRequest(s.T(), http.MethodPost, s.path(d, "/submit")))

	s.Equal(http.StatusBadRequest, rr.Code)
	outcome := tu.UnmarshalResponse[map[string]any](s.T(), rr)
	s.Equal("violation", (*outcome)["kind"])
	s.Equal("Capacity must be at least 1", (*outcome)["message"])
}

func (s *RegistrationHandlerSuite) TestSubmitRejectedKeepsDraft() {
	d := s.create()
	s.fillValid(d)
	s.mockRegistrar.EXPECT().Register(gomock.Any(), gomock.Any()).Return(&marketplace.Envelope{
		Errors: []marketplace.FieldError{{Field: "email", Message: "already registered"}},
	}, nil)

	rr := tu.DoRequest(s.router, tu.NewRequest(s.T(), http.MethodPost, s.path(d, "/submit")))

	s.Equal(http.StatusUnprocessableEntity, rr.Code)
	outcome := tu.UnmarshalResponse[map[string]any](s.T(), rr)
	s.Equal("email: already registered", (*outcome)["message"])

	rr = tu.DoRequest(s.router, tu.NewRequest(s.T(), http.MethodGet, s.path(d, "")))
	s.Require().Equal(http.StatusOK, rr.Code)
	s.Equal("depot@example.com", tu.UnmarshalResponse[DraftResponse](s.T(), rr).Draft.Email)
}

func (s *RegistrationHandlerSuite) TestSubmitSuccessRemovesDraft() {
	d := s.create()
	s.fillValid(d)
	s.mockRegistrar.EXPECT().Register(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, p marketplace.RegisterPayload) (*marketplace.Envelope, error) {
			s.Equal("+9779812345678", p.Phone)
			s.Equal("Ram Gurung", p.Name)
			s.Equal("Pokhara Depot", p.CenterName)
			return &marketplace.Envelope{Success: true}, nil
		})

	rr := tu.DoRequest(s.router, tu.NewRequest(s.T(), http.MethodPost, s.path(d, "/submit")))

	s.Require().Equal(http.StatusOK, rr.Code)
	outcome := tu.UnmarshalResponse[map[string]any](s.T(), rr)
	s.Equal(submission.MsgSubmitted, (*outcome)["message"])
	s.Equal("succeeded", (*outcome)["state"])

	rr = tu.DoRequest(s.router, tu.NewRequest(s.T(), http.MethodGet, s.path(d, "")))
	tu.AssertStatus(s.T(), rr, http.StatusNotFound)
}

func (s *RegistrationHandlerSuite) TestSubmitTransportFailure() {
	d := s.create()
	s.fillValid(d)
	s.mockRegistrar.EXPECT().Register(gomock.Any(), gomock.Any()).
		Return(nil, &marketplace.ClientError{Category: marketplace.ErrorOutage, Operation: "register", Message: "dial tcp: refused"})

	rr := tu.DoRequest(s.router, tu.NewRequest(s.T(), http.MethodPost, s.path(d, "/submit")))

	s.Equal(http.StatusBadGateway, rr.Code)
	s.NotContains(rr.Body.String(), "dial tcp")
	s.Contains(rr.Body.String(), submission.MsgFallback)
}

func (s *RegistrationHandlerSuite) TestDiscard() {
	d := s.create()

	rr := tu.DoRequest(s.router, tu.NewRequest(s.T(), http.MethodDelete, s.path(d, "")))
	tu.AssertStatus(s.T(), rr, http.StatusNoContent)

	rr = tu.DoRequest(s.router, tu.NewRequest(s.T(), http.MethodDelete, s.path(d, "")))
	tu.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}
