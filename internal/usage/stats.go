package usage

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Stats aggregates translate requests. All fields are plain counters so a
// Stats value can also represent a delta to be added elsewhere.
type Stats struct {
	TotalRequests int64 `json:"total_requests"`
	LiveRequests  int64 `json:"live_requests"`
	DemoResponses int64 `json:"demo_responses"`

	// Per-provider statistics (openai/claude)
	Providers map[string]*ProviderStats `json:"providers"`
	// Per-tone outcomes of live requests
	Tones map[string]*ToneStats `json:"tones"`
	// Daily statistics, key: "2006-01-02"
	Daily map[string]*DailyStats `json:"daily"`
}

// ProviderStats tracks requests that selected one provider.
type ProviderStats struct {
	Requests    int64 `json:"requests"`
	Demo        int64 `json:"demo"`
	ToneSuccess int64 `json:"tone_success"`
	ToneFailure int64 `json:"tone_failure"`
}

// ToneStats tracks per-tone results.
type ToneStats struct {
	Success int64 `json:"success"`
	Failure int64 `json:"failure"`
}

// DailyStats tracks statistics for one day in the tracker's timezone.
type DailyStats struct {
	Requests    int64 `json:"requests"`
	Demo        int64 `json:"demo"`
	FailedTones int64 `json:"failed_tones"`
}

// NewStats returns empty statistics with initialized maps.
func NewStats() *Stats {
	return &Stats{
		Providers: make(map[string]*ProviderStats),
		Tones:     make(map[string]*ToneStats),
		Daily:     make(map[string]*DailyStats),
	}
}

// ensureMaps initializes nil maps, e.g. after JSON decoding.
func (s *Stats) ensureMaps() {
	if s.Providers == nil {
		s.Providers = make(map[string]*ProviderStats)
	}
	if s.Tones == nil {
		s.Tones = make(map[string]*ToneStats)
	}
	if s.Daily == nil {
		s.Daily = make(map[string]*DailyStats)
	}
}

func (s *Stats) provider(name string) *ProviderStats {
	p, ok := s.Providers[name]
	if !ok {
		p = &ProviderStats{}
		s.Providers[name] = p
	}
	return p
}

func (s *Stats) tone(name string) *ToneStats {
	t, ok := s.Tones[name]
	if !ok {
		t = &ToneStats{}
		s.Tones[name] = t
	}
	return t
}

func (s *Stats) day(key string) *DailyStats {
	d, ok := s.Daily[key]
	if !ok {
		d = &DailyStats{}
		s.Daily[key] = d
	}
	return d
}

// Empty reports whether no counter is set.
func (s *Stats) Empty() bool {
	return s == nil || (s.TotalRequests == 0 && s.LiveRequests == 0 && s.DemoResponses == 0 &&
		len(s.Providers) == 0 && len(s.Tones) == 0 && len(s.Daily) == 0)
}

// Apply adds one request record. The day key uses the timestamp's own location.
func (s *Stats) Apply(rec RequestRecord) {
	s.ensureMaps()
	s.TotalRequests++
	p := s.provider(rec.Provider)
	p.Requests++
	d := s.day(rec.Timestamp.Format("2006-01-02"))
	d.Requests++

	if rec.Demo {
		s.DemoResponses++
		p.Demo++
		d.Demo++
		return
	}
	s.LiveRequests++
	for tone, ok := range rec.Tones {
		t := s.tone(tone)
		if ok {
			t.Success++
			p.ToneSuccess++
		} else {
			t.Failure++
			p.ToneFailure++
			d.FailedTones++
		}
	}
}

// Merge adds every counter of delta into s.
func (s *Stats) Merge(delta *Stats) {
	if delta == nil {
		return
	}
	s.ensureMaps()
	s.TotalRequests += delta.TotalRequests
	s.LiveRequests += delta.LiveRequests
	s.DemoResponses += delta.DemoResponses
	for k, v := range delta.Providers {
		p := s.provider(k)
		p.Requests += v.Requests
		p.Demo += v.Demo
		p.ToneSuccess += v.ToneSuccess
		p.ToneFailure += v.ToneFailure
	}
	for k, v := range delta.Tones {
		t := s.tone(k)
		t.Success += v.Success
		t.Failure += v.Failure
	}
	for k, v := range delta.Daily {
		d := s.day(k)
		d.Requests += v.Requests
		d.Demo += v.Demo
		d.FailedTones += v.FailedTones
	}
}

// Clone returns a deep copy.
func (s *Stats) Clone() *Stats {
	out := NewStats()
	out.Merge(s)
	return out
}

// Flatten renders the counters as field -> value, the layout of the redis hash.
// Zero counters are omitted.
func (s *Stats) Flatten() map[string]int64 {
	out := make(map[string]int64)
	put := func(field string, v int64) {
		if v != 0 {
			out[field] = v
		}
	}
	put("total_requests", s.TotalRequests)
	put("live_requests", s.LiveRequests)
	put("demo_responses", s.DemoResponses)
	for k, v := range s.Providers {
		put("provider:"+k+":requests", v.Requests)
		put("provider:"+k+":demo", v.Demo)
		put("provider:"+k+":tone_success", v.ToneSuccess)
		put("provider:"+k+":tone_failure", v.ToneFailure)
	}
	for k, v := range s.Tones {
		put("tone:"+k+":success", v.Success)
		put("tone:"+k+":failure", v.Failure)
	}
	for k, v := range s.Daily {
		put("daily:"+k+":requests", v.Requests)
		put("daily:"+k+":demo", v.Demo)
		put("daily:"+k+":failed_tones", v.FailedTones)
	}
	return out
}

// StatsFromFields parses the string values of a redis hash and delegates to
// StatsFromCounters. Malformed values are skipped.
func StatsFromFields(fields map[string]string) *Stats {
	counters := make(map[string]int64, len(fields))
	for field, raw := range fields {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			continue
		}
		counters[field] = v
	}
	return StatsFromCounters(counters)
}

// StatsFromCounters is the inverse of Flatten. Unknown fields are skipped.
func StatsFromCounters(counters map[string]int64) *Stats {
	s := NewStats()
	for field, v := range counters {
		parts := strings.Split(field, ":")
		switch {
		case len(parts) == 1:
			switch field {
			case "total_requests":
				s.TotalRequests = v
			case "live_requests":
				s.LiveRequests = v
			case "demo_responses":
				s.DemoResponses = v
			}
		case len(parts) == 3 && parts[0] == "provider":
			p := s.provider(parts[1])
			switch parts[2] {
			case "requests":
				p.Requests = v
			case "demo":
				p.Demo = v
			case "tone_success":
				p.ToneSuccess = v
			case "tone_failure":
				p.ToneFailure = v
			}
		case len(parts) == 3 && parts[0] == "tone":
			t := s.tone(parts[1])
			switch parts[2] {
			case "success":
				t.Success = v
			case "failure":
				t.Failure = v
			}
		case len(parts) == 3 && parts[0] == "daily":
			d := s.day(parts[1])
			switch parts[2] {
			case "requests":
				d.Requests = v
			case "demo":
				d.Demo = v
			case "failed_tones":
				d.FailedTones = v
			}
		}
	}
	return s
}

// RecentDays returns up to n day keys, newest first.
func (s *Stats) RecentDays(n int) []string {
	keys := make([]string, 0, len(s.Daily))
	for k := range s.Daily {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	if n > 0 && len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// RequestRecord describes one handled translate request.
type RequestRecord struct {
	Timestamp time.Time
	Provider  string
	Demo      bool
	// Tones maps tone -> succeeded; empty for demo responses.
	Tones map[string]bool
}
