package dig_container

import (
	"context"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/trezcool/classsync/apps/api/echo"
	"github.com/trezcool/classsync/core"
	"github.com/trezcool/classsync/core/assignment"
	"github.com/trezcool/classsync/core/chat"
	"github.com/trezcool/classsync/core/ledger"
	"github.com/trezcool/classsync/core/quiz"
	"github.com/trezcool/classsync/core/user"
	"github.com/trezcool/classsync/core/voting"
	emailsvc "github.com/trezcool/classsync/services/email"
	logsvc "github.com/trezcool/classsync/services/logger"
	"github.com/trezcool/classsync/storage/database"
	gormrepos "github.com/trezcool/classsync/storage/database/gorm"
	inmemdb "github.com/trezcool/classsync/storage/database/inmem"
	sqlxrepos "github.com/trezcool/classsync/storage/database/sqlx"
)

const engineMemory = "memory"

type (
	DBLoggerParam struct {
		dig.In
		Logger core.Logger `name:"dbLogger"`
	}

	// StoreCloser releases the connections held by the repositories.
	StoreCloser func()

	repositories struct {
		dig.Out
		Users       user.Repository
		Voting      voting.Repository
		Chat        chat.Repository
		Assignments assignment.Repository
		Ledger      ledger.Repository
		Quiz        quiz.Repository
		Closer      StoreCloser
	}

	serverParams struct {
		dig.In
		Conf          *core.Config
		Logger        core.Logger
		Validate      *validator.Validate
		Translator    ut.Translator
		UserSvc       *user.Service
		VotingSvc     *voting.Service
		ChatSvc       *chat.Service
		AssignmentSvc *assignment.Service
		LedgerSvc     *ledger.Service
		QuizSvc       *quiz.Service
	}
)

func newLogger(conf *core.Config) *logsvc.RollbarLogger {
	return logsvc.NewRollbarLogger(log.New(os.Stdout, "API : ", log.LstdFlags), conf)
}

func newDBLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
}

// newRepositories opens the configured store: Postgres (sqlx for records, gorm for voting) or the in-memory one.
func newRepositories(conf *core.Config, loggerParam DBLoggerParam) repositories {
	if conf.Database.Engine == engineMemory {
		db := inmemdb.Open()
		loggerParam.Logger.Warn("using the in-memory store; data is lost on restart")
		return repositories{
			Users:       inmemdb.NewUserRepository(db),
			Voting:      inmemdb.NewVotingRepository(db),
			Chat:        inmemdb.NewChatRepository(db),
			Assignments: inmemdb.NewAssignmentRepository(db),
			Ledger:      inmemdb.NewLedgerRepository(db),
			Quiz:        inmemdb.NewQuizRepository(db),
			Closer:      func() {},
		}
	}

	ctx := context.Background()
	setUp := func() (repositories, error) {
		if err := database.CreateIfNotExist(ctx, conf); err != nil {
			return repositories{}, err
		}
		db, err := database.Open(ctx, conf)
		if err != nil {
			return repositories{}, err
		}
		if err = database.Migrate(ctx, db.DB); err != nil {
			_ = db.Close()
			return repositories{}, err
		}
		gdb, err := database.OpenGorm(ctx, conf)
		if err != nil {
			_ = db.Close()
			return repositories{}, err
		}

		return repositories{
			Users:       sqlxrepos.NewUserRepository(db),
			Voting:      gormrepos.NewVotingRepository(gdb),
			Chat:        sqlxrepos.NewChatRepository(db),
			Assignments: sqlxrepos.NewAssignmentRepository(db),
			Ledger:      sqlxrepos.NewLedgerRepository(db),
			Quiz:        sqlxrepos.NewQuizRepository(db),
			Closer: func() {
				if err := database.CloseGorm(gdb); err != nil {
					loggerParam.Logger.Error("closing gorm pool", err)
				}
				if err := db.Close(); err != nil {
					loggerParam.Logger.Error("closing database", err)
				}
			},
		}, nil
	}

	repos, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal("setting up database", err)
	}
	return repos
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidator(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	ledger.InitValidators(validate, translator)
	return validate
}

func studentLister(svc *user.Service) voting.StudentLister         { return svc }
func assignmentStudents(svc *user.Service) assignment.StudentLister { return svc }
func userGetter(svc *user.Service) ledger.UserGetter               { return svc }

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:          p.Conf,
		Logger:        p.Logger,
		Validate:      p.Validate,
		Translator:    p.Translator,
		UserSvc:       p.UserSvc,
		VotingSvc:     p.VotingSvc,
		ChatSvc:       p.ChatSvc,
		AssignmentSvc: p.AssignmentSvc,
		LedgerSvc:     p.LedgerSvc,
		QuizSvc:       p.QuizSvc,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(func(l *logsvc.RollbarLogger) core.Logger { return l }))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newRepositories))
	must(c.Provide(newEmailService))
	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidator))

	must(c.Provide(user.NewService))
	must(c.Provide(studentLister))
	must(c.Provide(assignmentStudents))
	must(c.Provide(userGetter))
	must(c.Provide(voting.NewService))
	must(c.Provide(chat.NewService))
	must(c.Provide(assignment.NewService))
	must(c.Provide(ledger.NewService))
	must(c.Provide(quiz.NewService))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
