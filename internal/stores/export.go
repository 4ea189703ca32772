package stores

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	pkgerrors "github.com/sijangmap/marketmap-backend/pkg/errors"
)

const exportSheet = "Stores"

var exportHeader = []string{
	"ID", "Name", "Code", "Zone", "Phone", "Address", "Detail Address",
	"X", "Y", "Marker Radius", "Business Hours", "Created At",
}

// ExportXLSX renders the active store directory as a spreadsheet for the
// admin panel's download button.
func (s *service) ExportXLSX(ctx context.Context) ([]byte, error) {
	rows, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stores for export")
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet, err := f.NewSheet(exportSheet)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create export sheet")
	}
	f.SetActiveSheet(sheet)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "drop default sheet")
	}

	for col, title := range exportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(exportSheet, cell, title); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write export header")
		}
	}

	for i := range rows {
		store := &rows[i]
		values := []any{
			store.StoreID,
			store.StoreName,
			deref(store.StoreCode),
			derefInt(store.ZoneNumber),
			deref(store.PhoneNumber),
			deref(store.Address),
			deref(store.DetailAddress),
			store.XCoordinate,
			store.YCoordinate,
			store.MarkerRadius,
			deref(store.BusinessHours),
			store.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, fmt.Sprintf("write export row %d", i+2))
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "serialize export")
	}
	return buf.Bytes(), nil
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func derefInt(value *int) any {
	if value == nil {
		return ""
	}
	return *value
}
