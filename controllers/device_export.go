package controllers

import (
	"fmt"
	"net/http"
	"time"

	"Gin_postgres_redis_device_inventory/db"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const exportPageSize = 200

var exportHeaders = []string{
	"Kind", "Name", "Make", "Serial number", "Status", "Condition",
	"Lender", "Lendee", "Responsible party", "Purchased", "Updated",
}

// GET /api/devices/export.xlsx 过滤条件同列表，导出全部页
func (dc *DeviceController) ExportDevices(c *gin.Context) {
	q, fields := parseDevicesQuery(c)
	if len(fields) > 0 {
		badFields(c, fields)
		return
	}

	rows, err := dc.collectRows(c, q)
	if err != nil {
		dc.writeError(c, err)
		return
	}

	f, err := buildDeviceWorkbook(rows)
	if err != nil {
		dc.writeError(c, err)
		return
	}
	defer f.Close()

	fileName := fmt.Sprintf("devices_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Status(http.StatusOK)
	if err := f.Write(c.Writer); err != nil {
		dc.Log.Error("write xlsx failed", zap.Error(err))
	}
}

func (dc *DeviceController) collectRows(c *gin.Context, q db.DevicesQuery) ([]db.DeviceRow, error) {
	q.Size = exportPageSize
	var all []db.DeviceRow
	for q.Page = 1; ; q.Page++ {
		res, err := dc.Repo.ListDevices(c.Request.Context(), q)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Items...)
		if len(res.Items) < exportPageSize || int64(len(all)) >= res.Total {
			return all, nil
		}
	}
}

func buildDeviceWorkbook(rows []db.DeviceRow) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := fillDeviceSheet(f, "Devices", rows); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func fillDeviceSheet(f *excelize.File, sheet string, rows []db.DeviceRow) error {
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, "A1", &exportHeaders); err != nil {
		return err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
	if err := f.SetCellStyle(sheet, "A1", lastHeader, style); err != nil {
		return err
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			string(r.Kind),
			r.Name,
			r.Make,
			r.SerialNumber,
			r.VerboseStatus,
			r.ConditionLabel,
			r.LenderName,
			r.LendeeName,
			r.ResponsibleParty,
			r.PurchasedAt.Format("2006-01-02"),
			r.UpdatedAt.Format("2006-01-02 15:04"),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	for _, w := range []struct {
		from, to string
		width    float64
	}{
		{"B", "D", 22},
		{"E", "E", 32},
		{"G", "I", 22},
		{"J", "K", 18},
	} {
		if err := f.SetColWidth(sheet, w.from, w.to, w.width); err != nil {
			return err
		}
	}
	return nil
}
