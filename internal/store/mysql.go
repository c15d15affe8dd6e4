package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"missiond/internal/mission"
)

type missionRecord struct {
	ID        string `gorm:"primaryKey;size:64"`
	Goal      string `gorm:"type:text"`
	Status    string `gorm:"size:32;index"`
	Result    string `gorm:"type:text"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (missionRecord) TableName() string { return "missions" }

type taskRecord struct {
	ID          string `gorm:"primaryKey;size:64"`
	MissionID   string `gorm:"size:64;index"`
	Position    int
	Description string `gorm:"type:text"`
	Status      string `gorm:"size:32"`
	Retries     int

	// JSON blobs; opaque to the schema, round-tripped exactly.
	Result            string `gorm:"type:text"`
	FailureDetails    string `gorm:"type:text"`
	ValidationOutcome string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (taskRecord) TableName() string { return "tasks" }

// MySQL persists missions and tasks through gorm.
type MySQL struct {
	db *gorm.DB
}

// OpenMySQL connects, fixes up the DSN parameters and migrates the schema.
func OpenMySQL(dsn string) (*MySQL, error) {
	dsn = ensureParam(dsn, "parseTime", "true")
	if !strings.Contains(dsn, "charset=") {
		dsn = ensureParam(dsn, "charset", "utf8mb4")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("mysql open: %w", err)
	}
	if err := db.AutoMigrate(&missionRecord{}, &taskRecord{}); err != nil {
		return nil, fmt.Errorf("mysql migrate: %w", err)
	}
	return &MySQL{db: db}, nil
}

func ensureParam(dsn, key, val string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + val
}

func (s *MySQL) CreateMission(ctx context.Context, m *mission.Mission) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(toMissionRecord(m)).Error; err != nil {
			return err
		}
		for i, t := range m.Tasks {
			rec, err := toTaskRecord(t, i)
			if err != nil {
				return err
			}
			if err := tx.Create(rec).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *MySQL) GetMission(ctx context.Context, id string) (*mission.Mission, error) {
	var mr missionRecord
	if err := s.db.WithContext(ctx).First(&mr, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	var trs []taskRecord
	if err := s.db.WithContext(ctx).Where("mission_id = ?", id).Find(&trs).Error; err != nil {
		return nil, translate(err)
	}
	sort.Slice(trs, func(i, j int) bool { return trs[i].Position < trs[j].Position })
	return fromRecords(&mr, trs)
}

func (s *MySQL) ListActiveMissions(ctx context.Context) ([]*mission.Mission, error) {
	var mrs []missionRecord
	err := s.db.WithContext(ctx).
		Where("status NOT IN ?", []string{mission.StatusCompleted, mission.StatusFailed}).
		Order("created_at").
		Find(&mrs).Error
	if err != nil {
		return nil, translate(err)
	}

	out := make([]*mission.Mission, 0, len(mrs))
	for i := range mrs {
		m, err := s.GetMission(ctx, mrs[i].ID)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (s *MySQL) UpdateMission(ctx context.Context, id string, upd MissionUpdate) error {
	fields := map[string]any{}
	if upd.Status != nil {
		fields["status"] = *upd.Status
	}
	if upd.Result != nil {
		fields["result"] = *upd.Result
	}
	if len(fields) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&missionRecord{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MySQL) DeleteMission(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&taskRecord{}, "mission_id = ?", id).Error; err != nil {
			return err
		}
		res := tx.Delete(&missionRecord{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *MySQL) GetTask(ctx context.Context, id string) (*mission.Task, error) {
	var tr taskRecord
	if err := s.db.WithContext(ctx).First(&tr, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return fromTaskRecord(&tr)
}

func (s *MySQL) UpdateTask(ctx context.Context, id string, upd TaskUpdate) error {
	fields := map[string]any{}
	if upd.Status != nil {
		fields["status"] = *upd.Status
	}
	if upd.Retries != nil {
		fields["retries"] = *upd.Retries
	}
	if upd.Result != nil {
		fields["result"] = *upd.Result
	}
	if upd.FailureDetails != nil {
		b, err := json.Marshal(upd.FailureDetails)
		if err != nil {
			return fmt.Errorf("marshal failure details: %w", err)
		}
		fields["failure_details"] = string(b)
	}
	if upd.ValidationOutcome != nil {
		b, err := json.Marshal(upd.ValidationOutcome)
		if err != nil {
			return fmt.Errorf("marshal validation outcome: %w", err)
		}
		fields["validation_outcome"] = string(b)
	}
	if len(fields) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).Model(&taskRecord{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MySQL) DeleteTask(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&taskRecord{}, "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func toMissionRecord(m *mission.Mission) *missionRecord {
	return &missionRecord{
		ID:        m.ID,
		Goal:      m.Goal,
		Status:    m.Status,
		Result:    m.Result,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toTaskRecord(t *mission.Task, position int) (*taskRecord, error) {
	rec := &taskRecord{
		ID:          t.ID,
		MissionID:   t.MissionID,
		Position:    position,
		Description: t.Description,
		Status:      t.Status,
		Retries:     t.Retries,
		Result:      t.Result,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.FailureDetails != nil {
		b, err := json.Marshal(t.FailureDetails)
		if err != nil {
			return nil, fmt.Errorf("marshal failure details: %w", err)
		}
		rec.FailureDetails = string(b)
	}
	if t.ValidationOutcome != nil {
		b, err := json.Marshal(t.ValidationOutcome)
		if err != nil {
			return nil, fmt.Errorf("marshal validation outcome: %w", err)
		}
		rec.ValidationOutcome = string(b)
	}
	return rec, nil
}

func fromTaskRecord(tr *taskRecord) (*mission.Task, error) {
	t := &mission.Task{
		ID:          tr.ID,
		MissionID:   tr.MissionID,
		Description: tr.Description,
		Status:      tr.Status,
		Retries:     tr.Retries,
		Result:      tr.Result,
		CreatedAt:   tr.CreatedAt,
		UpdatedAt:   tr.UpdatedAt,
	}
	if tr.FailureDetails != "" {
		var fd mission.FailureDetails
		if err := json.Unmarshal([]byte(tr.FailureDetails), &fd); err != nil {
			return nil, fmt.Errorf("unmarshal failure details: %w", err)
		}
		t.FailureDetails = &fd
	}
	if tr.ValidationOutcome != "" {
		var vo mission.ValidationOutput
		if err := json.Unmarshal([]byte(tr.ValidationOutcome), &vo); err != nil {
			return nil, fmt.Errorf("unmarshal validation outcome: %w", err)
		}
		t.ValidationOutcome = &vo
	}
	return t, nil
}

func fromRecords(mr *missionRecord, trs []taskRecord) (*mission.Mission, error) {
	m := &mission.Mission{
		ID:        mr.ID,
		Goal:      mr.Goal,
		Status:    mr.Status,
		Result:    mr.Result,
		CreatedAt: mr.CreatedAt,
		UpdatedAt: mr.UpdatedAt,
		Tasks:     make([]*mission.Task, 0, len(trs)),
	}
	for i := range trs {
		t, err := fromTaskRecord(&trs[i])
		if err != nil {
			return nil, err
		}
		m.Tasks = append(m.Tasks, t)
	}
	return m, nil
}
