package session_test

import (
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	userDatamodel "github.com/gestaolite/backoffice/internal/core/datamodel/user"
	"github.com/gestaolite/backoffice/internal/core/datamodel/worksession"
	"github.com/gestaolite/backoffice/internal/session"
)

func TestSession(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Session Suite")
}

func newTestStore() (*session.Store, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())

	lg := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store, err := session.NewStoreWithDB(db, lg)
	Expect(err).NotTo(HaveOccurred())
	return store, db
}

func overwriteEntry(db *gorm.DB, key, value string) {
	entry := session.Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	Expect(db.Save(&entry).Error).NotTo(HaveOccurred())
}

var _ = Describe("Store", func() {
	var (
		store *session.Store
		db    *gorm.DB
	)

	BeforeEach(func() {
		store, db = newTestStore()
	})

	Describe("identity persistence", func() {
		It("round-trips the saved user", func() {
			u := &userDatamodel.User{ID: "u-1", Name: "Maria", Phone: "11999990000"}
			Expect(store.Save(u)).To(Succeed())

			loaded, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(u))
		})

		It("returns no session when the slot is empty", func() {
			loaded, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeNil())
		})

		It("treats a corrupt slot as logged out and clears it", func() {
			overwriteEntry(db, "currentUser", `{"name":"Maria",`)

			loaded, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeNil())

			var count int64
			db.Model(&session.Entry{}).Where("key = ?", "currentUser").Count(&count)
			Expect(count).To(BeZero())
		})

		It("treats an incomplete record as logged out", func() {
			overwriteEntry(db, "currentUser", `{"name":"Maria"}`)

			loaded, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeNil())
		})
	})

	Describe("Clear", func() {
		It("removes the identity and the work session together", func() {
			Expect(store.Save(&userDatamodel.User{Name: "Maria", Phone: "11999990000"})).To(Succeed())
			Expect(store.SaveWorkSession(&worksession.WorkSession{CompanyID: "c-1", StartedAt: time.Now()})).To(Succeed())

			Expect(store.Clear()).To(Succeed())

			loaded, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(BeNil())

			ws, err := store.LoadWorkSession()
			Expect(err).NotTo(HaveOccurred())
			Expect(ws).To(BeNil())
		})
	})

	Describe("work session", func() {
		It("round-trips and clears independently of the identity", func() {
			Expect(store.Save(&userDatamodel.User{Name: "Maria", Phone: "11999990000"})).To(Succeed())

			started := time.Now().Truncate(time.Second)
			Expect(store.SaveWorkSession(&worksession.WorkSession{CompanyID: "c-1", StartedAt: started})).To(Succeed())

			ws, err := store.LoadWorkSession()
			Expect(err).NotTo(HaveOccurred())
			Expect(ws.CompanyID).To(Equal("c-1"))
			Expect(ws.StartedAt.Equal(started)).To(BeTrue())

			Expect(store.ClearWorkSession()).To(Succeed())

			ws, err = store.LoadWorkSession()
			Expect(err).NotTo(HaveOccurred())
			Expect(ws).To(BeNil())

			loaded, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).NotTo(BeNil())
		})

		It("drops a corrupt work session without touching the identity", func() {
			Expect(store.Save(&userDatamodel.User{Name: "Maria", Phone: "11999990000"})).To(Succeed())
			overwriteEntry(db, "activeWorkSession", `not json`)

			ws, err := store.LoadWorkSession()
			Expect(err).NotTo(HaveOccurred())
			Expect(ws).To(BeNil())

			loaded, err := store.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).NotTo(BeNil())
		})
	})
})
