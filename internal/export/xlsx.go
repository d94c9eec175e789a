// Package export renders a user's statistics report as an XLSX workbook.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"subtrack/internal/core"
	"subtrack/internal/services"
)

// WriteReportXLSX writes a workbook with a summary sheet, the monthly usage
// series, per-subscription cards and per-investment break-even figures.
func WriteReportXLSX(w io.Writer, report core.Report, subs []services.SubscriptionCard, invs []services.InvestmentCard, today core.Date) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	summarySheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(summarySheet, "요약"); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeSummary(f, "요약", report, today); err != nil {
		return err
	}
	if err := writeUsageSeries(f, report); err != nil {
		return err
	}
	if err := writeSubscriptions(f, subs); err != nil {
		return err
	}
	if err := writeInvestments(f, invs); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, sheet string, report core.Report, today core.Date) error {
	rows := [][]interface{}{
		{"기준일", today.String()},
		{"구독 수", report.Summary.SubscriptionCount},
		{"월 구독료 합계", report.Summary.TotalMonthlyFee.Amount},
		{"이번 달 사용 횟수", report.Summary.TotalUsageCount},
		{"회당 평균 비용", report.Summary.AvgCostPerUse.Amount},
		{"투자 수", report.Summary.InvestmentCount},
	}
	return writeRows(f, sheet, nil, rows)
}

func writeUsageSeries(f *excelize.File, report core.Report) error {
	const sheet = "월별 사용"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}

	header := []interface{}{"월", "사용 횟수", "절약액"}
	rows := make([][]interface{}, 0, len(report.MonthlyUsage))
	for i, p := range report.MonthlyUsage {
		var savings int64
		if i < len(report.InvestmentSavings) {
			savings = report.InvestmentSavings[i].Amount.Amount
		}
		rows = append(rows, []interface{}{p.Label, p.Count, savings})
	}
	return writeRows(f, sheet, header, rows)
}

func writeSubscriptions(f *excelize.File, subs []services.SubscriptionCard) error {
	const sheet = "구독"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}

	header := []interface{}{"이름", "월 구독료", "이번 달 사용", "총 사용", "회당 비용", "상태"}
	rows := make([][]interface{}, 0, len(subs))
	for _, s := range subs {
		rows = append(rows, []interface{}{
			s.Name,
			s.MonthlyAmount.Amount,
			s.Stats.MonthlyUsageCount,
			s.Stats.TotalUsageCount,
			s.Stats.CostPerUse.Amount,
			tierLabel(s.Stats.Tier),
		})
	}
	return writeRows(f, sheet, header, rows)
}

func writeInvestments(f *excelize.File, invs []services.InvestmentCard) error {
	const sheet = "투자"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}

	header := []interface{}{"이름", "분류", "구매가", "사용 횟수", "총 절약액", "본전 진행률(%)"}
	rows := make([][]interface{}, 0, len(invs))
	for _, inv := range invs {
		rows = append(rows, []interface{}{
			inv.Name,
			inv.CategoryName,
			inv.PurchasePrice.Amount,
			inv.Stats.UsageCount,
			inv.Stats.TotalSavings.Amount,
			inv.Stats.BreakEvenProgress,
		})
	}
	return writeRows(f, sheet, header, rows)
}

func writeRows(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}) error {
	rowNum := 1
	if header != nil {
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
		rowNum = 2
	}
	for _, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
		rowNum++
	}
	return nil
}

func tierLabel(t core.Tier) string {
	switch t {
	case core.TierGood:
		return "좋음"
	case core.TierNormal:
		return "보통"
	default:
		return "주의"
	}
}
