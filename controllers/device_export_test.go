package controllers

import (
	"testing"
	"time"

	"Gin_postgres_redis_device_inventory/db"
	"Gin_postgres_redis_device_inventory/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestFillDeviceSheetReturnsErrors(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	err := fillDeviceSheet(f, "", nil)
	assert.ErrorIs(t, err, excelize.ErrSheetNameBlank)
}

func TestBuildDeviceWorkbookStyles(t *testing.T) {
	rows := []db.DeviceRow{{
		Kind:          models.KindCase,
		Name:          "Case",
		Make:          "Otter",
		VerboseStatus: "Checked in",
		PurchasedAt:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2024, 3, 2, 10, 30, 0, 0, time.UTC),
	}}
	f, err := buildDeviceWorkbook(rows)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue("Devices", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Case", v)

	w, err := f.GetColWidth("Devices", "E")
	require.NoError(t, err)
	assert.Equal(t, 32.0, w)

	styleID, err := f.GetCellStyle("Devices", "K1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
}
