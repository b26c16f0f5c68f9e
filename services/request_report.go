package services

import (
	"bytes"
	"context"
	"time"

	"gearguard/utils"

	"github.com/xuri/excelize/v2"
)

const requestReportSheet = "Requests"

var requestReportHeader = []interface{}{
	"ID", "Subject", "Type", "Status", "Equipment", "Category", "Team ID",
	"Equipment Scrapped", "Requester", "Technician", "Scheduled Date",
	"Duration (h)", "Created At",
}

// ExportWorkbook renders the joined request listing as an xlsx workbook.
func (rl *RequestLifecycle) ExportWorkbook(ctx context.Context) (*bytes.Buffer, error) {
	rows, err := rl.List(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", requestReportSheet); err != nil {
		return nil, utils.NewInternalError("rename sheet", err)
	}
	if err := f.SetSheetRow(requestReportSheet, "A1", &requestReportHeader); err != nil {
		return nil, utils.NewInternalError("write report header", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, utils.NewInternalError("resolve cell", err)
		}
		values := []interface{}{
			r.ID, r.Subject, string(r.Type), string(r.Status),
			deref(r.EquipmentName), deref(r.Category), derefUint(r.TeamID),
			r.EquipmentScrapped != nil && *r.EquipmentScrapped,
			deref(r.Requester), deref(r.Technician), "", "",
			r.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if r.ScheduledDate != nil {
			values[10] = time.Time(*r.ScheduledDate).Format("2006-01-02")
		}
		if r.DurationHours != nil {
			values[11] = *r.DurationHours
		}
		if err := f.SetSheetRow(requestReportSheet, cell, &values); err != nil {
			return nil, utils.NewInternalError("write report row", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, utils.NewInternalError("render report", err)
	}
	rl.log.WithField("rows", len(rows)).Info("request report exported")
	return buf, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefUint(v *uint) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
