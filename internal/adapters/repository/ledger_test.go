package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/okian/supportxp/internal/domain/model"
)

func award(sub, user string, xp int) model.Award {
	return model.Award{SubmissionID: sub, UserID: user, TotalXP: xp, ActivityType: model.ActivityTicketCompletion}
}

func TestXPLedger_Record(t *testing.T) {
	ctx := context.Background()
	users := 0
	l := NewXPLedger(WithRecordHook(func(n int) { users = n }))

	ok, err := l.Record(ctx, award("s1", "alice", 43))
	if err != nil || !ok {
		t.Fatalf("expected first award to be recorded, got ok=%v err=%v", ok, err)
	}
	ok, err = l.Record(ctx, award("s1", "alice", 43))
	if err != nil || ok {
		t.Fatalf("expected duplicate to be skipped, got ok=%v err=%v", ok, err)
	}
	if _, err := l.Record(ctx, award("s2", "alice", 10)); err != nil {
		t.Fatalf("record: %v", err)
	}

	s, err := l.Standing(ctx, "alice")
	if err != nil {
		t.Fatalf("standing: %v", err)
	}
	if s.TotalXP != 53 || s.Activities != 2 || s.Rank != 1 {
		t.Errorf("unexpected standing %+v", s)
	}
	if users != 1 || l.Users() != 1 {
		t.Errorf("expected one user, hook=%d users=%d", users, l.Users())
	}
	if got := l.Awards(ctx, "alice"); len(got) != 2 || got[0].SubmissionID != "s1" {
		t.Errorf("unexpected history %v", got)
	}
}

func TestXPLedger_Errors(t *testing.T) {
	ctx := context.Background()
	l := NewXPLedger()

	if _, err := l.Record(ctx, award("", "alice", 1)); !errors.Is(err, ErrEmptyID) {
		t.Errorf("expected ErrEmptyID for missing submission id, got %v", err)
	}
	if _, err := l.Record(ctx, award("s1", " ", 1)); !errors.Is(err, ErrEmptyID) {
		t.Errorf("expected ErrEmptyID for missing user id, got %v", err)
	}
	if _, err := l.Standing(ctx, "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := l.TopN(ctx, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	if got := l.Awards(ctx, "nobody"); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil history, got %v", got)
	}
}

func TestXPLedger_TopNWithTies(t *testing.T) {
	ctx := context.Background()
	l := NewXPLedger()
	for i, rec := range []struct {
		user string
		xp   int
	}{{"carol", 30}, {"alice", 50}, {"bob", 50}, {"dave", 10}} {
		if _, err := l.Record(ctx, award(fmt.Sprintf("s%d", i), rec.user, rec.xp)); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	top, err := l.TopN(ctx, 3)
	if err != nil {
		t.Fatalf("topN: %v", err)
	}
	want := []model.XPStanding{
		{Rank: 1, UserID: "alice", TotalXP: 50, Activities: 1},
		{Rank: 1, UserID: "bob", TotalXP: 50, Activities: 1},
		{Rank: 2, UserID: "carol", TotalXP: 30, Activities: 1},
	}
	if fmt.Sprint(top) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, top)
	}

	all, _ := l.TopN(ctx, 100)
	if len(all) != 4 || all[3].Rank != 3 {
		t.Errorf("expected dense rank 3 for the last user, got %v", all)
	}
	s, _ := l.Standing(ctx, "dave")
	if s.Rank != 3 {
		t.Errorf("expected standing rank 3, got %d", s.Rank)
	}
}

func TestXPLedger_HistoryLimit(t *testing.T) {
	ctx := context.Background()
	l := NewXPLedger(WithHistoryLimit(2))
	for i := 0; i < 5; i++ {
		_, _ = l.Record(ctx, award(fmt.Sprintf("s%d", i), "alice", 1))
	}

	got := l.Awards(ctx, "alice")
	if len(got) != 2 || got[0].SubmissionID != "s3" || got[1].SubmissionID != "s4" {
		t.Errorf("expected the two newest awards, got %v", got)
	}
	if s, _ := l.Standing(ctx, "alice"); s.TotalXP != 5 || s.Activities != 5 {
		t.Errorf("history cap must not affect totals, got %+v", s)
	}
}

func TestXPLedger_ConcurrentRecord(t *testing.T) {
	ctx := context.Background()
	l := NewXPLedger()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// every goroutine races on the same submission ids
			for i := 0; i < 100; i++ {
				_, _ = l.Record(ctx, award(fmt.Sprintf("s%d", i), fmt.Sprintf("u%d", i%10), 2))
			}
		}()
	}
	wg.Wait()

	top, _ := l.TopN(ctx, 10)
	total := 0
	for _, s := range top {
		total += s.TotalXP
	}
	if total != 200 {
		t.Errorf("expected each submission to count once (200 XP), got %d", total)
	}
}

func TestXPLedger_AwardedLimit(t *testing.T) {
	ctx := context.Background()
	l := NewXPLedger(WithAwardedLimit(2))

	for _, id := range []string{"s1", "s2", "s3"} {
		if ok, err := l.Record(ctx, award(id, "alice", 10)); err != nil || !ok {
			t.Fatalf("record %s: ok=%v err=%v", id, ok, err)
		}
	}
	if n := l.awarded.Len(); n != 2 {
		t.Errorf("expected the awarded set to hold 2 ids, got %d", n)
	}
	if ok, _ := l.Record(ctx, award("s3", "alice", 10)); ok {
		t.Error("expected a remembered id to be skipped")
	}
	// s1 was evicted, so only the deduper in front would stop it
	if ok, _ := l.Record(ctx, award("s1", "alice", 10)); !ok {
		t.Error("expected an evicted id to be recorded again")
	}

	if d := NewXPLedger(WithAwardedLimit(0)); d.awardedLimit != defaultAwardedLimit {
		t.Errorf("expected a non-positive limit to keep the default, got %d", d.awardedLimit)
	}
}
