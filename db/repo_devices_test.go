package db_test

import (
	"context"
	"testing"

	"Gin_postgres_redis_device_inventory/db"
	"Gin_postgres_redis_device_inventory/db/dbtest"
	"Gin_postgres_redis_device_inventory/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *db.Repo {
	return db.NewRepo(dbtest.Open(t))
}

func seedStaff(t *testing.T, repo *db.Repo) *models.User {
	t.Helper()
	u := &models.User{ID: uuid.NewString(), Username: "Alan@Example.com", FirstName: "Alan", LastName: "Admin", Role: models.RoleAdmin}
	require.NoError(t, repo.CreateUser(context.Background(), u))
	return u
}

func seedLendee(t *testing.T, repo *db.Repo, first, last string) *models.Lendee {
	t.Helper()
	l := &models.Lendee{FirstName: first, LastName: last}
	require.NoError(t, repo.CreateLendee(context.Background(), l))
	return l
}

func TestCreateDeviceDefaults(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	tablet := &models.Device{Kind: models.KindTablet, Make: "Apple", SerialNumber: "12345X67"}
	require.NoError(t, repo.CreateDevice(ctx, tablet, ""))
	headphones := &models.Device{Kind: models.KindHeadphones, Make: "Sony"}
	require.NoError(t, repo.CreateDevice(ctx, headphones, ""))

	got, err := repo.FindDeviceByID(ctx, tablet.ID)
	require.NoError(t, err)
	assert.Equal(t, "iPad", got.Name)
	assert.Equal(t, models.StatusCheckedInNotReady, got.Status)
	assert.Equal(t, models.ConditionExcellent, got.Condition)

	got, err = repo.FindDeviceByID(ctx, headphones.ID)
	require.NoError(t, err)
	assert.Equal(t, "Headphones", got.Name)
	assert.Equal(t, models.StatusCheckedIn, got.Status)

	evs, err := repo.ListDeviceEvents(ctx, tablet.ID, 0)
	require.NoError(t, err)
	require.Len(t, evs, 1)
	assert.Equal(t, models.EventCreated, evs[0].Action)
	assert.Contains(t, evs[0].Snapshot, "12345X67")
}

func TestCreateDeviceValidation(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	err := repo.CreateDevice(ctx, &models.Device{Kind: models.KindTablet, Make: "Apple"}, "")
	assert.ErrorIs(t, err, db.ErrSerialRequired)

	err = repo.CreateDevice(ctx, &models.Device{Kind: "laptop", Make: "Dell"}, "")
	assert.ErrorIs(t, err, db.ErrUnknownKind)

	err = repo.CreateDevice(ctx, &models.Device{Kind: models.KindCase, Make: "Otter", Status: models.StatusCheckedInReady}, "")
	assert.ErrorIs(t, err, db.ErrStatusNotAllowed)

	ok := &models.Device{Kind: models.KindTablet, Make: "Apple", SerialNumber: "S1", Status: models.StatusStorage}
	require.NoError(t, repo.CreateDevice(ctx, ok, ""))
	assert.Equal(t, models.StatusStorage, ok.Status)
}

func TestCheckOutAndCheckIn(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	staff := seedStaff(t, repo)
	lendee := seedLendee(t, repo, "Jimmy", "Page")

	d := &models.Device{Kind: models.KindTablet, Make: "Apple", SerialNumber: "S1"}
	require.NoError(t, repo.CreateDevice(ctx, d, staff.ID))

	out, err := repo.CheckOutDevice(ctx, d.ID, staff.ID, lendee.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckedOut, out.Status)

	row, err := repo.FindDeviceRow(ctx, d.ID)
	require.NoError(t, err)
	require.NotNil(t, row.LenderID)
	require.NotNil(t, row.LendeeID)
	assert.Equal(t, staff.ID, *row.LenderID)
	assert.Equal(t, lendee.ID, *row.LendeeID)
	assert.Equal(t, "Checked out to Jimmy Page", row.VerboseStatus)
	assert.Equal(t, models.ColorAmber, row.StatusColor)
	assert.Equal(t, "Alan Admin", row.LenderName)
	assert.Equal(t, "Jimmy Page", row.LendeeName)

	in, err := repo.CheckInDevice(ctx, d.ID, models.ConditionBroken, staff.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBroken, in.Status)
	assert.Equal(t, models.ConditionBroken, in.Condition)

	stored, err := repo.FindDeviceByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.LenderID)
	assert.Nil(t, stored.LendeeID)
	assert.Equal(t, models.StatusBroken, stored.Status)

	evs, err := repo.ListDeviceEvents(ctx, d.ID, 0)
	require.NoError(t, err)
	require.Len(t, evs, 3)
	actions := []models.EventAction{evs[0].Action, evs[1].Action, evs[2].Action}
	assert.ElementsMatch(t, []models.EventAction{models.EventCreated, models.EventCheckedOut, models.EventCheckedIn}, actions)
}

func TestCheckOutUnknownLendee(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	d := &models.Device{Kind: models.KindAdapter, Make: "Apple"}
	require.NoError(t, repo.CreateDevice(ctx, d, ""))

	_, err := repo.CheckOutDevice(ctx, d.ID, uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, db.ErrLendeeNotFound)

	_, err = repo.CheckOutDevice(ctx, uuid.NewString(), uuid.NewString(), uuid.NewString())
	assert.ErrorIs(t, err, db.ErrDeviceNotFound)
	assert.True(t, db.IsNotFound(err))
}

func TestDoubleCheckOutLastWriteWins(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	staff := seedStaff(t, repo)
	first := seedLendee(t, repo, "Robert", "Plant")
	second := seedLendee(t, repo, "John", "Bonham")

	d := &models.Device{Kind: models.KindHeadphones, Make: "Sony"}
	require.NoError(t, repo.CreateDevice(ctx, d, ""))

	_, err := repo.CheckOutDevice(ctx, d.ID, staff.ID, first.ID)
	require.NoError(t, err)
	_, err = repo.CheckOutDevice(ctx, d.ID, staff.ID, second.ID)
	require.NoError(t, err)

	stored, err := repo.FindDeviceByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, *stored.LendeeID)
}

func TestUpdateDevice(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	d := &models.Device{Kind: models.KindTablet, Make: "Apple", SerialNumber: "S1"}
	require.NoError(t, repo.CreateDevice(ctx, d, ""))

	ready := models.StatusCheckedInReady
	name := "iPad Air"
	got, err := repo.UpdateDevice(ctx, d.ID, db.DevicePatch{Status: &ready, Name: &name}, "")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckedInReady, got.Status)
	assert.Equal(t, "iPad Air", got.Name)

	generic := models.StatusCheckedIn
	_, err = repo.UpdateDevice(ctx, d.ID, db.DevicePatch{Status: &generic}, "")
	assert.ErrorIs(t, err, db.ErrStatusNotAllowed)

	empty := ""
	_, err = repo.UpdateDevice(ctx, d.ID, db.DevicePatch{SerialNumber: &empty}, "")
	assert.ErrorIs(t, err, db.ErrSerialRequired)

	// 清空名称后恢复默认名
	_, err = repo.UpdateDevice(ctx, d.ID, db.DevicePatch{Name: &empty}, "")
	require.NoError(t, err)
	stored, err := repo.FindDeviceByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "iPad", stored.Name)
	assert.Equal(t, models.StatusCheckedInReady, stored.Status)
}

func TestCreateDeviceCheckedOutRejected(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	err := repo.CreateDevice(ctx, &models.Device{Kind: models.KindCase, Make: "Otter", Status: models.StatusCheckedOut}, "")
	assert.ErrorIs(t, err, db.ErrCheckOutOnly)

	err = repo.CreateDevice(ctx, &models.Device{Kind: models.KindCase, Make: "Otter", Condition: models.ConditionBroken}, "")
	assert.ErrorIs(t, err, db.ErrConditionMismatch)

	broken := &models.Device{Kind: models.KindCase, Make: "Otter", Status: models.StatusBroken, Condition: models.ConditionBroken}
	require.NoError(t, repo.CreateDevice(ctx, broken, ""))

	res, err := repo.ListDevices(ctx, db.DevicesQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Total)
}

func TestUpdateDeviceHolderInvariant(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	staff := seedStaff(t, repo)
	lendee := seedLendee(t, repo, "Ann", "B")

	d := &models.Device{Kind: models.KindHeadphones, Make: "Sony"}
	require.NoError(t, repo.CreateDevice(ctx, d, ""))

	// 只能通过借出进入 CO
	out := models.StatusCheckedOut
	_, err := repo.UpdateDevice(ctx, d.ID, db.DevicePatch{Status: &out}, "")
	assert.ErrorIs(t, err, db.ErrCheckOutOnly)
	stored, err := repo.FindDeviceByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCheckedIn, stored.Status)

	_, err = repo.CheckOutDevice(ctx, d.ID, staff.ID, lendee.ID)
	require.NoError(t, err)

	// 借出中改其他字段，状态不变，持有人保留
	name := "Studio headphones"
	got, err := repo.UpdateDevice(ctx, d.ID, db.DevicePatch{Name: &name, Status: &out}, "")
	require.NoError(t, err)
	assert.True(t, got.IsCheckedOut())

	// broken 成色不能配 CI
	in := models.StatusCheckedIn
	broken := models.ConditionBroken
	_, err = repo.UpdateDevice(ctx, d.ID, db.DevicePatch{Status: &in, Condition: &broken}, "")
	assert.ErrorIs(t, err, db.ErrConditionMismatch)
	stored, err = repo.FindDeviceByID(ctx, d.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsCheckedOut())

	// 改离 CO 即清空持有人
	got, err = repo.UpdateDevice(ctx, d.ID, db.DevicePatch{Status: &in}, "")
	require.NoError(t, err)
	assert.Nil(t, got.LenderID)
	assert.Nil(t, got.LendeeID)

	row, err := repo.FindDeviceRow(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Checked in", row.VerboseStatus)
	assert.Empty(t, row.LendeeName)
	assert.Empty(t, row.LenderName)
	assert.Nil(t, row.LendeeID)
}

func TestDeleteDeviceKeepsHistory(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	d := &models.Device{Kind: models.KindCase, Make: "Otter"}
	require.NoError(t, repo.CreateDevice(ctx, d, ""))

	require.NoError(t, repo.DeleteDevice(ctx, d.ID, ""))
	_, err := repo.FindDeviceByID(ctx, d.ID)
	assert.ErrorIs(t, err, db.ErrDeviceNotFound)
	assert.ErrorIs(t, repo.DeleteDevice(ctx, d.ID, ""), db.ErrDeviceNotFound)

	evs, err := repo.ListDeviceEvents(ctx, d.ID, 0)
	require.NoError(t, err)
	assert.Len(t, evs, 2)

	res, err := repo.ListDevices(ctx, db.DevicesQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, res.Total)
	assert.Empty(t, res.Items)
}

func TestListDevicesFilters(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()
	staff := seedStaff(t, repo)
	subject := &models.Lendee{SubjectID: ptr("S-042")}
	require.NoError(t, repo.CreateLendee(ctx, subject))

	tablet := &models.Device{Kind: models.KindTablet, Name: "iPad 4, 16GB, WiFi", Make: "SERW09302", SerialNumber: "12345X67"}
	require.NoError(t, repo.CreateDevice(ctx, tablet, ""))
	require.NoError(t, repo.CreateDevice(ctx, &models.Device{Kind: models.KindHeadphones, Make: "Sony"}, ""))
	require.NoError(t, repo.CreateDevice(ctx, &models.Device{Kind: models.KindCase, Make: "Otter"}, ""))
	_, err := repo.CheckOutDevice(ctx, tablet.ID, staff.ID, subject.ID)
	require.NoError(t, err)

	all, err := repo.ListDevices(ctx, db.DevicesQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.Total)
	require.Len(t, all.Items, 3)

	tablets, err := repo.ListDevices(ctx, db.DevicesQuery{Kind: models.KindTablet})
	require.NoError(t, err)
	require.Len(t, tablets.Items, 1)
	row := tablets.Items[0]
	assert.Equal(t, "12345X67", row.SerialNumber)
	assert.Equal(t, "Checked out to Subject S-042", row.VerboseStatus)
	assert.Equal(t, "Subject S-042", row.LendeeName)
	assert.Equal(t, "Checked out", row.StatusLabel)

	byStatus, err := repo.ListDevices(ctx, db.DevicesQuery{Status: models.StatusCheckedIn})
	require.NoError(t, err)
	assert.EqualValues(t, 2, byStatus.Total)
	for _, r := range byStatus.Items {
		assert.Equal(t, models.ColorGreen, r.StatusColor)
	}

	search, err := repo.ListDevices(ctx, db.DevicesQuery{Q: "otter"})
	require.NoError(t, err)
	require.Len(t, search.Items, 1)
	assert.Equal(t, "Case", search.Items[0].Name)

	paged, err := repo.ListDevices(ctx, db.DevicesQuery{Page: 2, Size: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, paged.Total)
	assert.Len(t, paged.Items, 1)
}

func ptr(s string) *string { return &s }
