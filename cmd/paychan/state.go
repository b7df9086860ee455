package main

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-errors/errors"
	"perun.network/perun-btc-paychan/encoding"
)

// channelState is what survives a restart of a provider: the latest accepted
// payment, signed by both parties, and the signed refund.
type channelState struct {
	Payment *encoding.PaymentRecord `json:"payment,omitempty"`
	Refund  *encoding.RefundRecord  `json:"refund,omitempty"`
}

// state maps hex channel IDs to their state.
type state struct {
	Channels map[string]*channelState `json:"channels"`
}

func readState(path string) (*state, error) {
	s := &state{Channels: make(map[string]*channelState)}
	b, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	} else if err != nil {
		return nil, errors.Errorf("Could not read state %s: %v", path, err)
	}
	if err := json.Unmarshal(b, s); err != nil {
		return nil, errors.Errorf("Could not decode state %s: %v", path, err)
	}
	if s.Channels == nil {
		s.Channels = make(map[string]*channelState)
	}
	return s, nil
}

// write replaces the state file atomically.
func (s *state) write(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.Errorf("Could not create state directory: %v", err)
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := ioutil.WriteFile(tmp, b, 0600); err != nil {
		return errors.Errorf("Could not write state: %v", err)
	}
	return os.Rename(tmp, path)
}

func (s *state) channel(id string) *channelState {
	cs, ok := s.Channels[id]
	if !ok {
		cs = &channelState{}
		s.Channels[id] = cs
	}
	return cs
}

// ids returns the channel IDs in a stable order.
func (s *state) ids() []string {
	ids := make([]string, 0, len(s.Channels))
	for id := range s.Channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
