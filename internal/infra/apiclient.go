package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"fieldsync/internal/model"
)

// RemoteError is a rejection from the sync API — a non-2xx status, or a
// 2xx carrying an explicit success:false envelope — with the server's
// message preserved verbatim. The sync protocol sniffs Message for
// duplicate/already-exists wording, so it must not be rewritten.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote API %d: %s", e.Status, e.Message)
}

// ReauthFunc re-establishes the session after a 401/403. Registered by the
// auth service so the client has no dependency on credential storage.
type ReauthFunc func(ctx context.Context) error

// APIClient talks to the remote microfinance server. All methods are typed
// per endpoint; do() injects the bearer token and retries exactly once
// after a transparent re-authentication on 401/403.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	pingClient *http.Client
	session    *Session
	reauth     ReauthFunc
}

func NewAPIClient(baseURL string, timeout, pingTimeout time.Duration, session *Session) *APIClient {
	return &APIClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		pingClient: &http.Client{Timeout: pingTimeout},
		session:    session,
	}
}

// SetReauth registers the re-authentication hook.
func (c *APIClient) SetReauth(fn ReauthFunc) { c.reauth = fn }

// ── Auth & reachability ───────────────────────────────────────────────────────

type LoginResponse struct {
	Success      bool   `json:"success"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
	Error        string `json:"error"`
}

// Login posts credentials and returns the issued token. Unauthenticated.
func (c *APIClient) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	body := map[string]string{"username": username, "password": password}
	var resp LoginResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login/", body, &resp, false); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Token == "" {
		msg := resp.Error
		if msg == "" {
			msg = "login rejected"
		}
		return nil, fmt.Errorf("login: %s", msg)
	}
	return &resp, nil
}

// Ping probes the unauthenticated reachability endpoint. Any 2xx means
// online; any transport error or non-2xx means offline.
func (c *APIClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/ping/", nil)
	if err != nil {
		return err
	}
	resp, err := c.pingClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("ping returned %d", resp.StatusCode)
	}
	return nil
}

// ── Cash collections ──────────────────────────────────────────────────────────

type CashPayload struct {
	MemberID      string          `json:"member_id"`
	OfficerName   string          `json:"officer_name"`
	CashAmount    decimal.Decimal `json:"cash_amount"`
	MpesaAmount   decimal.Decimal `json:"mpesa_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	CashReference string          `json:"cash_reference"`
	AllocationID  string          `json:"allocation_id"`
	Remarks       string          `json:"remarks"`
	Timestamp     string          `json:"timestamp"`
}

func (c *APIClient) CollectCash(ctx context.Context, p CashPayload) error {
	return c.do(ctx, http.MethodPost, "/api/collect-cash/", p, nil, true)
}

// AllocationItem is one line of the "other" breakdown sent alongside the
// aggregated allocation payload.
type AllocationItem struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

type AllocationPayload struct {
	Savings                 decimal.Decimal  `json:"savings"`
	LoanRepayment           decimal.Decimal  `json:"loan_repayment"`
	RegistrationFee         decimal.Decimal  `json:"registration_fee"`
	AmountForAdvancePayment decimal.Decimal  `json:"amount_for_advance_payment"`
	Other                   decimal.Decimal  `json:"other"`
	OtherDescription        string           `json:"other_description"`
	Confirmed               bool             `json:"confirmed"`
	Timestamp               string           `json:"timestamp"`
	AllocationID            string           `json:"allocation_id"`
	OtherItems              []AllocationItem `json:"other_items"`
}

func (c *APIClient) AllocateFunds(ctx context.Context, memberParam string, p AllocationPayload) error {
	path := fmt.Sprintf("/api/members/%s/allocate_funds/", memberParam)
	return c.do(ctx, http.MethodPost, path, p, nil, true)
}

// ── Loans ─────────────────────────────────────────────────────────────────────

type LoanPayload struct {
	Member        string          `json:"member"`
	Amount        decimal.Decimal `json:"amount"`
	Installments  int             `json:"installments"`
	Guarantors    []string        `json:"guarantors"`
	OfficerName   string          `json:"officer_name"`
	Notes         string          `json:"notes"`
	LoanType      string          `json:"loan_type"`
	SecurityItems []string        `json:"security_items"`
}

func (c *APIClient) CreateLoan(ctx context.Context, p LoanPayload) error {
	return c.do(ctx, http.MethodPost, "/api/loans/", p, nil, true)
}

type DisbursePayload struct {
	IncludeProcessingFee    bool                    `json:"include_processing_fee"`
	IncludeAdvocateFee      bool                    `json:"include_advocate_fee"`
	IncludeAdvanceDeduction bool                    `json:"include_advance_deduction"`
	CustomDeductions        []model.CustomDeduction `json:"custom_deductions"`
}

type DisbursePreview struct {
	Success         bool            `json:"success"`
	NetAmount       decimal.Decimal `json:"net_amount"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	Error           string          `json:"error"`
}

// PreviewDisbursement is step one of the two-step protocol: the server
// computes deductions without committing anything.
func (c *APIClient) PreviewDisbursement(ctx context.Context, loanID int64, p DisbursePayload) (*DisbursePreview, error) {
	var preview DisbursePreview
	path := fmt.Sprintf("/api/loans/%d/preview_disbursement/", loanID)
	if err := c.do(ctx, http.MethodPost, path, p, &preview, true); err != nil {
		return nil, err
	}
	return &preview, nil
}

// Disburse commits the disbursement previewed above.
func (c *APIClient) Disburse(ctx context.Context, loanID int64, p DisbursePayload) error {
	path := fmt.Sprintf("/api/loans/%d/disburse/", loanID)
	return c.do(ctx, http.MethodPost, path, p, nil, true)
}

type AdvanceLoanPayload struct {
	Member          string          `json:"member"`
	PrincipalAmount decimal.Decimal `json:"principal_amount"`
	OfficerName     string          `json:"officer_name"`
	Notes           string          `json:"notes"`
	LoanType        string          `json:"loan_type"`
	Timestamp       string          `json:"timestamp"`
}

func (c *APIClient) CreateAdvanceLoan(ctx context.Context, p AdvanceLoanPayload) error {
	return c.do(ctx, http.MethodPost, "/api/advance-loans/", p, nil, true)
}

// ── Groups & members ──────────────────────────────────────────────────────────

type GroupCollectionPayload struct {
	GroupID        int64           `json:"group_id"`
	CashCollected  decimal.Decimal `json:"cash_collected"`
	FinesCollected decimal.Decimal `json:"fines_collected"`
}

func (c *APIClient) RecordGroupCollections(ctx context.Context, p GroupCollectionPayload) error {
	return c.do(ctx, http.MethodPost, "/api/diary/meetings/record_collections/", p, nil, true)
}

type NewMemberPayload struct {
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Group      int64  `json:"group"`
	Location   string `json:"location"`
	IDNumber   string `json:"id_number"`
	Email      string `json:"email,omitempty"`
	Occupation string `json:"occupation,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

func (c *APIClient) RegisterMember(ctx context.Context, p NewMemberPayload) error {
	return c.do(ctx, http.MethodPost, "/api/members/", p, nil, true)
}

// ── Member balances & today's loans ───────────────────────────────────────────

type MemberBalanceItem struct {
	MemberID    string `json:"member_id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	GroupID     int64  `json:"group_id"`
	GroupName   string `json:"group_name"`
	MeetingDate string `json:"meeting_date"`
	Balances    struct {
		SavingsBalance     decimal.Decimal `json:"savings_balance"`
		LoanBalance        decimal.Decimal `json:"loan_balance"`
		AdvanceLoanBalance decimal.Decimal `json:"advance_loan_balance"`
		UnallocatedFunds   decimal.Decimal `json:"unallocated_funds"`
		TotalOutstanding   decimal.Decimal `json:"total_outstanding"`
	} `json:"balances"`
	QualificationInputs *model.QualificationInputs `json:"qualification_inputs"`
}

type MemberBalancesResponse struct {
	Success  bool                `json:"success"`
	Members  []MemberBalanceItem `json:"members"`
	Meetings []struct {
		GroupID   int64  `json:"group_id"`
		GroupName string `json:"group_name"`
		Date      string `json:"date"`
	} `json:"meetings"`
	Summary struct {
		TotalMeetings   int                        `json:"total_meetings"`
		TotalMembers    int                        `json:"total_members"`
		FinancialTotals map[string]decimal.Decimal `json:"financial_totals"`
	} `json:"summary"`
	Error string `json:"error"`
}

// FetchMemberBalances asks the server for a fresh balance snapshot of every
// member in groups with meetings today.
func (c *APIClient) FetchMemberBalances(ctx context.Context) (*MemberBalancesResponse, error) {
	var resp MemberBalancesResponse
	if err := c.do(ctx, http.MethodPost, "/api/offline-sync/member-balances/", map[string]string{"action": "refresh"}, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

type TodayLoanItem struct {
	LoanID     string          `json:"loan_id"`
	DatabaseID int64           `json:"id"`
	MemberID   string          `json:"member_id"`
	MemberName string          `json:"member_name"`
	Amount     decimal.Decimal `json:"amount"`
}

type TodayLoansResponse struct {
	Success  bool `json:"success"`
	Meetings []struct {
		GroupID   int64           `json:"group_id"`
		GroupName string          `json:"group_name"`
		Loans     []TodayLoanItem `json:"loans"`
	} `json:"meetings"`
	Error string `json:"error"`
}

// FetchTodayLoans returns approved loans for groups with meetings today,
// grouped by meeting.
func (c *APIClient) FetchTodayLoans(ctx context.Context) (*TodayLoansResponse, error) {
	var resp TodayLoansResponse
	if err := c.do(ctx, http.MethodGet, "/api/loans/list_loans_for_today_meetings/", nil, &resp, true); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Cleanup triggers the server-side stale-data cleanup. Best effort.
func (c *APIClient) Cleanup(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/offline-sync/cleanup/", nil, nil, true)
}

// ── Transport ─────────────────────────────────────────────────────────────────

func (c *APIClient) do(ctx context.Context, method, path string, body, out interface{}, authed bool) error {
	err := c.doOnce(ctx, method, path, body, out, authed)
	if !authed || c.reauth == nil {
		return err
	}

	// One transparent re-auth + retry on 401/403, never more.
	var remote *RemoteError
	if errors.As(err, &remote) && (remote.Status == http.StatusUnauthorized || remote.Status == http.StatusForbidden) {
		c.session.Clear()
		if rerr := c.reauth(ctx); rerr != nil {
			return fmt.Errorf("re-authentication: %w", rerr)
		}
		return c.doOnce(ctx, method, path, body, out, authed)
	}
	return err
}

func (c *APIClient) doOnce(ctx context.Context, method, path string, body, out interface{}, authed bool) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if authed {
		if token, ok := c.session.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{Status: resp.StatusCode, Message: extractMessage(data)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	// Some endpoints report failure in-band on a 2xx. When the caller has
	// no typed response to inspect, an explicit success:false is a
	// rejection, with the server's message preserved for duplicate sniffing.
	if rejected, msg := inBandFailure(data); rejected {
		return &RemoteError{Status: resp.StatusCode, Message: msg}
	}
	return nil
}

// inBandFailure detects a {"success": false, ...} envelope. An absent or
// true success flag means the 2xx stands.
func inBandFailure(body []byte) (bool, string) {
	var envelope struct {
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return false, ""
	}
	if envelope.Success == nil || *envelope.Success {
		return false, ""
	}
	return true, extractMessage(body)
}

// extractMessage pulls the human-readable message out of an error body.
// Falls back to the raw body so duplicate sniffing still sees the text.
func extractMessage(body []byte) string {
	var envelope struct {
		Error   string `json:"error"`
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		switch {
		case envelope.Error != "":
			return envelope.Error
		case envelope.Detail != "":
			return envelope.Detail
		case envelope.Message != "":
			return envelope.Message
		}
	}
	return string(body)
}
