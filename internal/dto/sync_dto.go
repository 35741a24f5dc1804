package dto

// KindResult counts outcomes for one record kind within a sync pass.
type KindResult struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// MemberDataResult summarizes a member-data refresh.
type MemberDataResult struct {
	Success            bool   `json:"success"`
	MembersSynced      int    `json:"members_synced"`
	MeetingsSynced     int    `json:"meetings_synced"`
	LoansSynced        int    `json:"loans_synced"`
	LongTermEligible   int    `json:"longterm_eligible"`
	AdvanceEligible    int    `json:"advance_eligible"`
	MembersWithPending int    `json:"members_with_pending"`
	Error              string `json:"error,omitempty"`
}

// SyncResult is the aggregate outcome of a full sync pass.
// Success is true only when every kind had zero failures and the
// member-data step succeeded.
type SyncResult struct {
	Success    bool             `json:"success"`
	MemberData MemberDataResult `json:"member_data"`

	NewMembers        KindResult `json:"new_members"`
	LoanDisbursements KindResult `json:"loan_disbursements"`
	CashCollections   KindResult `json:"cash_collections"`
	LoanApplications  KindResult `json:"loan_applications"`
	AdvanceLoans      KindResult `json:"advance_loans"`
	GroupCollections  KindResult `json:"group_collections"`

	Errors []string `json:"errors"`
}

// TotalSynced sums successes across kinds.
func (r *SyncResult) TotalSynced() int {
	return r.NewMembers.Success + r.LoanDisbursements.Success +
		r.CashCollections.Success + r.LoanApplications.Success +
		r.AdvanceLoans.Success + r.GroupCollections.Success
}

// TotalFailed sums failures across kinds.
func (r *SyncResult) TotalFailed() int {
	return r.NewMembers.Failed + r.LoanDisbursements.Failed +
		r.CashCollections.Failed + r.LoanApplications.Failed +
		r.AdvanceLoans.Failed + r.GroupCollections.Failed
}
