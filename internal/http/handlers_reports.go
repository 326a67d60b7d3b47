package http

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	month, err := core.ParseMonth(r.PathValue("month"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	summary, err := s.repo.MonthlySummary(r.Context(), user.ID, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleBreakdown(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	month, err := core.ParseMonth(r.PathValue("month"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	breakdown, err := s.repo.MonthlyBreakdown(r.Context(), user.ID, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

func (s *Server) handleSummaryCSV(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	month, err := core.ParseMonth(r.PathValue("month"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	summary, err := s.repo.MonthlySummary(r.Context(), user.ID, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	setAttachment(w, "text/csv", fmt.Sprintf("summary-%s.csv", month))
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"month", "total_expenses", "total_transactions", "average_transaction_amount"})
	_ = cw.Write([]string{
		month.String(),
		summary.TotalExpenses.String(),
		strconv.Itoa(summary.TotalTransactions),
		summary.AverageTransaction.String(),
	})
	_ = cw.Write([]string{""})
	_ = cw.Write([]string{"rank", "category", "total_spent"})
	for i, top := range summary.TopSpendingCategories {
		_ = cw.Write([]string{strconv.Itoa(i + 1), top.Category, top.TotalSpent.String()})
	}
	cw.Flush()
}

func (s *Server) handleBreakdownCSV(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	month, err := core.ParseMonth(r.PathValue("month"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	breakdown, err := s.repo.MonthlyBreakdown(r.Context(), user.ID, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	setAttachment(w, "text/csv", fmt.Sprintf("breakdown-%s.csv", month))
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"category_id", "category_name", "total_amount", "transaction_count", "percentage_of_total_expenses"})
	for _, id := range sortedCategoryIDs(breakdown.Breakdown) {
		row := breakdown.Breakdown[id]
		_ = cw.Write([]string{
			strconv.FormatInt(id, 10),
			row.CategoryName,
			row.TotalAmount.String(),
			strconv.Itoa(row.TransactionCount),
			strconv.FormatFloat(row.PercentageOfTotal, 'f', 2, 64),
		})
	}
	cw.Flush()
}

func (s *Server) handleSummaryXLSX(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	month, err := core.ParseMonth(r.PathValue("month"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	summary, err := s.repo.MonthlySummary(r.Context(), user.ID, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{"Month", "Total expenses", "Transactions", "Average amount"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	_ = f.SetCellValue(sheet, "A2", month.String())
	_ = f.SetCellValue(sheet, "B2", summary.TotalExpenses.String())
	_ = f.SetCellValue(sheet, "C2", summary.TotalTransactions)
	_ = f.SetCellValue(sheet, "D2", summary.AverageTransaction.String())

	_ = f.SetCellValue(sheet, "A4", "Rank")
	_ = f.SetCellValue(sheet, "B4", "Category")
	_ = f.SetCellValue(sheet, "C4", "Total spent")
	for i, top := range summary.TopSpendingCategories {
		rowNum := 5 + i
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), i+1)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", rowNum), top.Category)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", rowNum), top.TotalSpent.String())
	}

	setAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		fmt.Sprintf("summary-%s.xlsx", month))
	if err := f.Write(w); err != nil {
		writeDomainError(w, r, err)
	}
}

func (s *Server) handleBreakdownXLSX(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	month, err := core.ParseMonth(r.PathValue("month"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	breakdown, err := s.repo.MonthlyBreakdown(r.Context(), user.ID, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{"Category ID", "Category", "Total amount", "Transactions", "% of total"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, id := range sortedCategoryIDs(breakdown.Breakdown) {
		row := breakdown.Breakdown[id]
		rowNum := 2 + i
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", rowNum), id)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", rowNum), row.CategoryName)
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", rowNum), row.TotalAmount.String())
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", rowNum), row.TransactionCount)
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", rowNum), row.PercentageOfTotal)
	}

	setAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		fmt.Sprintf("breakdown-%s.xlsx", month))
	if err := f.Write(w); err != nil {
		writeDomainError(w, r, err)
	}
}

func setAttachment(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}

func sortedCategoryIDs(m map[int64]core.CategoryBreakdown) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
