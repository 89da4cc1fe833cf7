// SPDX-License-Identifier: Apache-2.0

package state

type StateOpt func(s *State)

// WithVersion sets the pgdiff binary version recorded at Init time and
// compared against the stored schema version by VersionCompatibility.
func WithVersion(version string) StateOpt {
	return func(s *State) {
		s.version = version
	}
}
