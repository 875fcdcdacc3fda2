package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCheckOut(t *testing.T) {
	for _, k := range []Kind{KindTablet, KindHeadphones, KindAdapter, KindCase} {
		t.Run(string(k), func(t *testing.T) {
			d := &Device{Kind: k, Status: k.Profile().DefaultStatus}
			d.CheckOut("lender-1", "lendee-1")

			assert.Equal(t, StatusCheckedOut, d.Status)
			require.NotNil(t, d.LenderID)
			require.NotNil(t, d.LendeeID)
			assert.Equal(t, "lender-1", *d.LenderID)
			assert.Equal(t, "lendee-1", *d.LendeeID)
			assert.True(t, d.IsCheckedOut())
		})
	}
}

func TestCheckOutTwiceOverwritesHolder(t *testing.T) {
	d := &Device{Kind: KindCase}
	d.CheckOut("a", "b")
	d.CheckOut("c", "d")

	assert.Equal(t, StatusCheckedOut, d.Status)
	assert.Equal(t, "c", *d.LenderID)
	assert.Equal(t, "d", *d.LendeeID)
}

func TestCheckIn(t *testing.T) {
	cases := []struct {
		kind          Kind
		in            Condition
		wantStatus    Status
		wantCondition Condition
	}{
		{KindTablet, ConditionExcellent, StatusCheckedInNotReady, ConditionExcellent},
		{KindTablet, ConditionScratched, StatusCheckedInNotReady, ConditionScratched},
		{KindTablet, ConditionBroken, StatusBroken, ConditionBroken},
		{KindTablet, ConditionMissing, StatusMissing, ConditionMissing},
		{KindTablet, Condition("bogus"), StatusCheckedInNotReady, ConditionExcellent},
		{KindTablet, "", StatusCheckedInNotReady, ConditionExcellent},
		{KindHeadphones, ConditionExcellent, StatusCheckedIn, ConditionExcellent},
		{KindHeadphones, ConditionScratched, StatusCheckedIn, ConditionScratched},
		{KindHeadphones, ConditionBroken, StatusBroken, ConditionBroken},
		{KindAdapter, ConditionExcellent, StatusCheckedIn, ConditionExcellent},
		{KindAdapter, ConditionMissing, StatusMissing, ConditionMissing},
		{KindCase, ConditionExcellent, StatusCheckedIn, ConditionExcellent},
		{KindCase, Condition("whatever"), StatusCheckedIn, ConditionExcellent},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind)+"/"+string(tc.in), func(t *testing.T) {
			d := &Device{Kind: tc.kind}
			d.CheckOut("lender", "lendee")
			d.CheckIn(tc.in)

			assert.Equal(t, tc.wantStatus, d.Status)
			assert.Equal(t, tc.wantCondition, d.Condition)
			assert.Nil(t, d.LenderID)
			assert.Nil(t, d.LendeeID)
			assert.False(t, d.IsCheckedOut())
		})
	}
}

func TestCheckInStatusIsAllowedForKind(t *testing.T) {
	for _, p := range Profiles() {
		for _, c := range []Condition{ConditionExcellent, ConditionScratched, ConditionBroken, ConditionMissing} {
			d := &Device{Kind: p.Kind}
			d.CheckIn(c)
			assert.True(t, p.Allows(d.Status), "%s: %s not allowed", p.Kind, d.Status)
			assert.True(t, ConditionMatchesStatus(d.Condition, d.Status), "%s: %s/%s", p.Kind, d.Condition, d.Status)
		}
	}
}

func TestConditionMatchesStatus(t *testing.T) {
	assert.True(t, ConditionMatchesStatus(ConditionBroken, StatusBroken))
	assert.True(t, ConditionMatchesStatus(ConditionMissing, StatusMissing))
	assert.True(t, ConditionMatchesStatus(ConditionScratched, StatusStorage))
	assert.True(t, ConditionMatchesStatus(ConditionExcellent, StatusSentForRepair))
	assert.False(t, ConditionMatchesStatus(ConditionBroken, StatusCheckedIn))
	assert.False(t, ConditionMatchesStatus(ConditionMissing, StatusBroken))
}

func TestStatusColor(t *testing.T) {
	cases := map[Status]string{
		StatusCheckedInNotReady: ColorRed,
		StatusBroken:            ColorRed,
		StatusCheckedInReady:    ColorGreen,
		StatusCheckedIn:         ColorGreen,
		StatusCheckedOut:        ColorAmber,
		StatusStorage:           "",
		StatusMissing:           "",
		StatusSentForRepair:     "",
	}
	for st, want := range cases {
		d := &Device{Status: st}
		assert.Equal(t, want, d.StatusColor(), string(st))
	}
}

func TestVerboseStatus(t *testing.T) {
	d := &Device{Kind: KindTablet, Status: StatusStorage}
	assert.Equal(t, "Storage", d.VerboseStatus(nil))

	d.Status = StatusCheckedInNotReady
	assert.Equal(t, "Checked in - NOT READY", d.VerboseStatus(nil))

	d.CheckOut("lender", "lendee")
	person := &Lendee{FirstName: "Jimmy", LastName: "Page"}
	assert.Equal(t, "Checked out to Jimmy Page", d.VerboseStatus(person))

	subject := &Lendee{SubjectID: strPtr("S-042")}
	assert.Equal(t, "Checked out to Subject S-042", d.VerboseStatus(subject))

	assert.Equal(t, "Checked out", d.VerboseStatus(nil))
}

func TestBeforeSaveDefaults(t *testing.T) {
	cases := map[Kind]struct {
		name   string
		status Status
	}{
		KindTablet:     {"iPad", StatusCheckedInNotReady},
		KindHeadphones: {"Headphones", StatusCheckedIn},
		KindAdapter:    {"Power adapter", StatusCheckedIn},
		KindCase:       {"Case", StatusCheckedIn},
	}
	for k, want := range cases {
		d := &Device{Kind: k}
		require.NoError(t, d.BeforeSave(nil))
		assert.Equal(t, want.name, d.Name)
		assert.Equal(t, want.status, d.Status)
		assert.Equal(t, ConditionExcellent, d.Condition)
		assert.False(t, d.PurchasedAt.IsZero())
	}

	named := &Device{Kind: KindTablet, Name: "iPad 4, 16GB, WiFi", Status: StatusStorage}
	require.NoError(t, named.BeforeSave(nil))
	assert.Equal(t, "iPad 4, 16GB, WiFi", named.Name)
	assert.Equal(t, StatusStorage, named.Status)
}

func TestParseCondition(t *testing.T) {
	for in, want := range map[string]Condition{
		"excellent": ConditionExcellent,
		"Scratched": ConditionScratched,
		"broken":    ConditionBroken,
		" missing ": ConditionMissing,
		"EX":        ConditionExcellent,
		"sc":        ConditionScratched,
	} {
		got, err := ParseCondition(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseCondition("dusty")
	assert.Error(t, err)
	_, err = ParseCondition("")
	assert.Error(t, err)
}

func TestParseKindAndStatus(t *testing.T) {
	for in, want := range map[string]Kind{
		"tablet":     KindTablet,
		"ipads":      KindTablet,
		"iPad":       KindTablet,
		"headphones": KindHeadphones,
		"adapters":   KindAdapter,
		"case":       KindCase,
	} {
		got, err := ParseKind(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseKind("laptop")
	assert.Error(t, err)

	st, err := ParseStatus("co")
	require.NoError(t, err)
	assert.Equal(t, StatusCheckedOut, st)
	_, err = ParseStatus("XX")
	assert.Error(t, err)
}

func TestProfiles(t *testing.T) {
	tablet := KindTablet.Profile()
	assert.True(t, tablet.SerialRequired)
	assert.False(t, tablet.Allows(StatusCheckedIn))
	assert.True(t, tablet.Allows(StatusCheckedInReady))
	assert.Equal(t, "ipads", KindTablet.CName(true))
	assert.Equal(t, "ipad", KindTablet.CName(false))
	assert.Equal(t, "headphones", KindHeadphones.CName(false))

	hp := KindHeadphones.Profile()
	assert.False(t, hp.SerialRequired)
	assert.False(t, hp.Allows(StatusCheckedInNotReady))

	unknown := Kind("drone").Profile()
	assert.Equal(t, StatusCheckedIn, unknown.CheckInStatus)
	assert.False(t, Kind("drone").Valid())
	assert.Len(t, Profiles(), 4)
}

func TestRolePermissions(t *testing.T) {
	assert.True(t, RoleAdmin.Can(PermManageUsers))
	assert.True(t, RoleAdmin.Can(PermUpdateDeviceAttributes))
	assert.True(t, RoleExperimenter.Can(PermChangeDeviceStatus))
	assert.False(t, RoleExperimenter.Can(PermUpdateDeviceAttributes))
	assert.False(t, RoleReader.Can(PermChangeDeviceStatus))

	u := &User{Username: "Boss@Example.com", Role: RoleReader}
	assert.Equal(t, RoleAdmin, u.EffectiveRole([]string{"boss@example.com"}))
	assert.Equal(t, RoleReader, u.EffectiveRole(nil))

	_, err := ParseRole("janitor")
	assert.Error(t, err)
}
