package router

import (
	"time"

	"fieldsync/internal/config"
	"fieldsync/internal/handler"
	"fieldsync/internal/infra"
	"fieldsync/internal/middleware"
	"fieldsync/internal/repository"
	"fieldsync/internal/service"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB, plus the shared
// remote API client. The returned SyncService is also consumed by the
// auto-sync worker and the one-shot CLI.
func New(cfg *config.Config, db *gorm.DB) (*gin.Engine, service.SyncService) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())

	// ── Infrastructure ───────────────────────────────────────────────────────
	session := infra.NewSession(time.Duration(cfg.TokenTTLHours) * time.Hour)
	apiClient := infra.NewAPIClient(
		cfg.APIBaseURL,
		time.Duration(cfg.HTTPTimeoutSeconds)*time.Second,
		time.Duration(cfg.PingTimeoutSeconds)*time.Second,
		session,
	)

	// ── Repositories ─────────────────────────────────────────────────────────
	cashRepo := repository.NewCashCollectionRepository(db)
	loanAppRepo := repository.NewLoanApplicationRepository(db)
	disbursementRepo := repository.NewLoanDisbursementRepository(db)
	advanceRepo := repository.NewAdvanceLoanRepository(db)
	groupRepo := repository.NewGroupCollectionRepository(db)
	newMemberRepo := repository.NewNewMemberRepository(db)
	balanceRepo := repository.NewMemberBalanceRepository(db)
	approvedRepo := repository.NewApprovedLoanRepository(db)
	credsRepo := repository.NewCredentialsRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(credsRepo, apiClient, session)
	// Expired-token retries inside the client replay the stored login.
	apiClient.SetReauth(authSvc.Authenticate)

	qualSvc := service.NewQualificationService(balanceRepo, cashRepo, loanAppRepo, advanceRepo)
	memberDataSvc := service.NewMemberDataService(apiClient, balanceRepo, approvedRepo, qualSvc)
	syncSvc := service.NewSyncService(
		apiClient, authSvc, memberDataSvc,
		cashRepo, loanAppRepo, disbursementRepo, advanceRepo, groupRepo, newMemberRepo, approvedRepo,
		cfg.OfficerName, cfg.SyncBatchSize,
	)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	collectionsH := handler.NewCollectionsHandler(cashRepo, groupRepo)
	loansH := handler.NewLoansHandler(loanAppRepo, advanceRepo, disbursementRepo, approvedRepo)
	membersH := handler.NewMembersHandler(newMemberRepo, balanceRepo, cashRepo, qualSvc)
	syncH := handler.NewSyncHandler(
		syncSvc, authSvc, memberDataSvc,
		cashRepo, loanAppRepo, disbursementRepo, advanceRepo, groupRepo, newMemberRepo,
	)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, syncSvc))

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/credentials", authH.SaveCredentials)
			auth.POST("/login", authH.OfflineLogin)
			auth.GET("/status", authH.Status)
		}

		cash := v1.Group("/collections/cash")
		{
			cash.POST("", collectionsH.CreateCash)
			cash.GET("", collectionsH.ListCash)
			cash.PUT("/:id", collectionsH.UpdateCash)
			cash.DELETE("/:id", collectionsH.DeleteCash)
		}

		groups := v1.Group("/collections/group")
		{
			groups.POST("", collectionsH.CreateGroup)
			groups.GET("", collectionsH.ListGroup)
			groups.DELETE("/:id", collectionsH.DeleteGroup)
		}

		loans := v1.Group("/loans")
		{
			loans.POST("/applications", loansH.CreateApplication)
			loans.GET("/applications", loansH.ListApplications)
			loans.DELETE("/applications/:id", loansH.DeleteApplication)

			loans.POST("/advances", loansH.CreateAdvance)
			loans.GET("/advances", loansH.ListAdvances)
			loans.DELETE("/advances/:id", loansH.DeleteAdvance)

			loans.GET("/approved", loansH.ListApprovedLoans)
			loans.POST("/disbursements", loansH.CreateDisbursement)
			loans.GET("/disbursements", loansH.ListDisbursements)
			loans.DELETE("/disbursements/:id", loansH.DeleteDisbursement)
		}

		members := v1.Group("/members")
		{
			members.POST("", membersH.CreateNewMember)
			members.GET("/new", membersH.ListNewMembers)
			members.PUT("/new/:id", membersH.UpdateNewMember)
			members.DELETE("/new/:id", membersH.DeleteNewMember)

			members.GET("", membersH.ListBalances)
			members.GET("/summary", membersH.BalanceSummary)
			members.GET("/:memberId", membersH.GetBalance)
			members.GET("/:memberId/qualification", membersH.MemberQualification)
			members.GET("/:memberId/pending", membersH.PendingContributions)
		}

		v1.GET("/qualifications", membersH.BulkQualifications)
		v1.GET("/qualifications/groups", membersH.GroupSummaries)

		sync := v1.Group("/sync")
		{
			sync.POST("", syncH.SyncAll)
			sync.POST("/members", syncH.SyncMemberData)
		}

		records := v1.Group("/records")
		{
			records.GET("/pending", syncH.PendingCounts)
			records.DELETE("/synced", syncH.CleanupSynced)
			records.DELETE("/stale", syncH.CleanupStale)
		}
	}

	return r, syncSvc
}
