// Package recorder persists every synthesized frame to a SQLite database, so
// that a session can be replayed or inspected later.
package recorder

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/adammck/biped"
	"github.com/glebarez/sqlite"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Numbers the in-memory databases, each of which is private to one recorder.
var memories atomic.Uint64

var log = logrus.WithFields(logrus.Fields{
	"pkg": "recorder",
})

// FrameRecord is one row per synthesized frame.
type FrameRecord struct {
	ID        uint      `gorm:"primarykey"`
	Character string    `gorm:"size:63;index:idx_character_frame"`
	Frame     uint64    `gorm:"index:idx_character_frame"`
	Time      time.Time `gorm:"index:idx_time"`

	X       float64
	Y       float64
	Z       float64
	Heading float64
	Phase   float64

	Stand  float64
	Walk   float64
	Jog    float64
	Crouch float64
	Jump   float64
	Bump   float64

	// Joint positions, and the positions of every trajectory point, as
	// arrays of [x, y, z].
	Joints     datatypes.JSON
	Trajectory datatypes.JSON
}

func (*FrameRecord) TableName() string {
	return "frames"
}

// Recorder is a component which writes each new snapshot to the database.
type Recorder struct {
	db        *gorm.DB
	character string

	// The frame of the last snapshot written, so that nothing is written
	// twice when the motion loop skips a frame.
	last uint64
}

// Open connects to (creating, if necessary) the database at path. An empty
// path keeps everything in memory, in a database which no other recorder
// shares.
func Open(path, character string) (*Recorder, error) {
	dsn := path
	if dsn == "" {
		dsn = fmt.Sprintf("file:recorder%d?mode=memory&cache=shared", memories.Add(1))
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", dsn, err)
	}

	if err := db.AutoMigrate(&FrameRecord{}); err != nil {
		return nil, fmt.Errorf("migrating: %w", err)
	}

	return &Recorder{
		db:        db,
		character: character,
	}, nil
}

func (r *Recorder) Boot() error {
	var n int64
	if err := r.db.Model(&FrameRecord{}).Where("character = ?", r.character).Count(&n).Error; err != nil {
		return err
	}

	log.Infof("recording %s, %d frames already recorded", r.character, n)
	return nil
}

func (r *Recorder) Tick(now time.Time, state *biped.State) error {
	s := state.Snapshot
	if s == nil || s.Frame == r.last {
		return nil
	}

	rec, err := record(r.character, now, s)
	if err != nil {
		return err
	}

	if err := r.db.Create(rec).Error; err != nil {
		return fmt.Errorf("recording frame %d: %w", s.Frame, err)
	}

	r.last = s.Frame
	return nil
}

func record(character string, now time.Time, s *biped.Snapshot) (*FrameRecord, error) {
	joints := make([]mgl64.Vec3, len(s.Joints))
	for i, j := range s.Joints {
		joints[i] = j.Position
	}

	traj := make([]mgl64.Vec3, len(s.Trajectory))
	for i, p := range s.Trajectory {
		traj[i] = p.Position
	}

	jj, err := json.Marshal(joints)
	if err != nil {
		return nil, err
	}

	tj, err := json.Marshal(traj)
	if err != nil {
		return nil, err
	}

	return &FrameRecord{
		Character:  character,
		Frame:      s.Frame,
		Time:       now,
		X:          s.Root.Position.X(),
		Y:          s.Root.Position.Y(),
		Z:          s.Root.Position.Z(),
		Heading:    s.Root.Heading,
		Phase:      s.Phase,
		Stand:      s.Gait.Stand,
		Walk:       s.Gait.Walk,
		Jog:        s.Gait.Jog,
		Crouch:     s.Gait.Crouch,
		Jump:       s.Gait.Jump,
		Bump:       s.Gait.Bump,
		Joints:     datatypes.JSON(jj),
		Trajectory: datatypes.JSON(tj),
	}, nil
}

// Frames returns every recorded frame of the character, in order.
func (r *Recorder) Frames() ([]FrameRecord, error) {
	var recs []FrameRecord
	err := r.db.Where("character = ?", r.character).Order("frame").Find(&recs).Error
	return recs, err
}

// JointPositions decodes the joint positions of a record.
func (f *FrameRecord) JointPositions() ([]mgl64.Vec3, error) {
	var v []mgl64.Vec3
	err := json.Unmarshal(f.Joints, &v)
	return v, err
}

func (r *Recorder) Close() error {
	db, err := r.db.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
