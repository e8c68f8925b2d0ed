// Copyright 2026 The Oakflow Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package errors

import "errors"

// IsRejectedInput reports whether err is (or wraps) a RejectedInputError.
func IsRejectedInput(err error) bool {
	var target *RejectedInputError
	return errors.As(err, &target)
}

// IsContextMissing reports whether err is (or wraps) a ContextMissingError.
func IsContextMissing(err error) bool {
	var target *ContextMissingError
	return errors.As(err, &target)
}

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
