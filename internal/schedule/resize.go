/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package schedule

import "time"

// ResizeWatch turns a burst of resize observations into one call of its target
// after the burst settles. Hosts call Notify from their resize hook; the target
// is usually a pane controller's HandleScaleChange.
type ResizeWatch struct {
	deb    *Debouncer
	target func()
}

// NewResizeWatch returns a watch that settles after the given delay. Zero runs
// the target right after the current layout pass.
func NewResizeWatch(target func(), settle time.Duration, opts ...Option) *ResizeWatch {
	return &ResizeWatch{deb: NewDebouncer(settle, opts...), target: target}
}

// Notify records one resize observation.
func (w *ResizeWatch) Notify() {
	if w == nil || w.target == nil {
		return
	}
	w.deb.Trigger(w.target)
}

// Stop drops a pending notification.
func (w *ResizeWatch) Stop() {
	if w != nil {
		w.deb.Cancel()
	}
}
