package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"courtops/internal/domain"
)

var ErrRegisterNotFound = errors.New("cash register not found")

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

type IncomeBreakdown struct {
	Total   float64 `json:"total"`
	Cash    float64 `json:"cash"`
	Digital float64 `json:"digital"`
}

type DailyFinancials struct {
	Date          time.Time       `json:"date"`
	Income        IncomeBreakdown `json:"income"`
	Expenses      float64         `json:"expenses"`
	Pending       float64         `json:"pending"`
	ExpectedTotal float64         `json:"expected_total"`
}

// DailyFinancials summarizes one day: cash flow from the ledger plus
// what the day's bookings still owe. Income splits cash from digital
// (transfer, card, mercadopago).
func (s *Service) DailyFinancials(ctx context.Context, clubID string, date time.Time) (*DailyFinancials, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)

	var txs []domain.Transaction
	err := s.db.WithContext(ctx).
		Joins("JOIN cash_registers ON cash_registers.id = transactions.cash_register_id").
		Where("cash_registers.club_id = ?", clubID).
		Where("transactions.created_at >= ? AND transactions.created_at < ?", dayStart, dayEnd).
		Find(&txs).Error
	if err != nil {
		return nil, err
	}

	report := &DailyFinancials{Date: dayStart}
	for _, tx := range txs {
		switch tx.Type {
		case domain.TransactionIncome:
			report.Income.Total += tx.Amount
			if tx.Method == domain.MethodCash {
				report.Income.Cash += tx.Amount
			} else {
				report.Income.Digital += tx.Amount
			}
		case domain.TransactionExpense:
			report.Expenses += tx.Amount
		}
	}

	var bookings []domain.Booking
	err = s.db.WithContext(ctx).
		Preload("Items").
		Preload("Transactions").
		Where("club_id = ? AND status <> ?", clubID, domain.BookingCanceled).
		Where("start_time >= ? AND start_time < ?", dayStart, dayEnd).
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}

	for _, b := range bookings {
		total := b.Price
		for _, item := range b.Items {
			total += item.UnitPrice * float64(item.Quantity)
		}
		var paid float64
		for _, tx := range b.Transactions {
			if tx.Type == domain.TransactionIncome {
				paid += tx.Amount
			} else {
				paid -= tx.Amount
			}
		}

		report.ExpectedTotal += total
		if owed := total - paid; owed > 0 {
			report.Pending += owed
		}
	}

	return report, nil
}

// ExportRegisterCSV renders a register's transactions as CSV.
func (s *Service) ExportRegisterCSV(ctx context.Context, clubID string, registerID int64) ([]byte, error) {
	_, txs, err := s.loadRegister(ctx, clubID, registerID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"id", "created_at", "type", "category", "method", "amount", "description"})
	for _, tx := range txs {
		_ = w.Write([]string{
			strconv.FormatInt(tx.ID, 10),
			tx.CreatedAt.UTC().Format(time.RFC3339),
			string(tx.Type),
			string(tx.Category),
			string(tx.Method),
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			tx.Description,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportRegisterXLSX renders a register day sheet: one transaction per
// row and a totals block at the bottom.
func (s *Service) ExportRegisterXLSX(ctx context.Context, clubID string, registerID int64) ([]byte, error) {
	register, txs, err := s.loadRegister(ctx, clubID, registerID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Register"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	headers := []string{"ID", "Time", "Type", "Category", "Method", "Amount", "Description"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	var income, expenses float64
	for row, tx := range txs {
		values := []interface{}{
			tx.ID,
			tx.CreatedAt.UTC().Format("15:04:05"),
			string(tx.Type),
			string(tx.Category),
			string(tx.Method),
			tx.Amount,
			tx.Description,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
		if tx.Type == domain.TransactionIncome {
			income += tx.Amount
		} else {
			expenses += tx.Amount
		}
	}

	totalsRow := len(txs) + 3
	totals := [][2]interface{}{
		{"Date", register.Date.UTC().Format("2006-01-02")},
		{"Income", income},
		{"Expenses", expenses},
		{"Balance", income - expenses},
	}
	for i, pair := range totals {
		labelCell, _ := excelize.CoordinatesToCellName(1, totalsRow+i)
		valueCell, _ := excelize.CoordinatesToCellName(2, totalsRow+i)
		if err := f.SetCellValue(sheet, labelCell, pair[0]); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, valueCell, pair[1]); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Service) loadRegister(ctx context.Context, clubID string, registerID int64) (*domain.CashRegister, []domain.Transaction, error) {
	var register domain.CashRegister
	err := s.db.WithContext(ctx).Where("club_id = ?", clubID).First(&register, registerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRegisterNotFound
		}
		return nil, nil, err
	}

	var txs []domain.Transaction
	err = s.db.WithContext(ctx).
		Where("cash_register_id = ?", register.ID).
		Order("created_at asc, id asc").
		Find(&txs).Error
	if err != nil {
		return nil, nil, err
	}
	return &register, txs, nil
}
