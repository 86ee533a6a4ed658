/**
 * Copyright 2024 MaxPoint Interactive, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


package generator

import (
	"testing"

	"github.com/maxpoint/cascading-avro-go/internal/testutil"
)

func TestMatch(t *testing.T) {
	testutil.MaybeFail = testutil.InitFailFunc(t)

	testutil.MaybeFail("match", testutil.Expect(Match("", ""), true))
	testutil.MaybeFail("match", testutil.Expect(Match("a.avsc", ""), false))
	testutil.MaybeFail("match", testutil.Expect(Match("a.avsc", "a.avsc"), true))
	testutil.MaybeFail("match", testutil.Expect(Match("a.avsc", "*.avsc"), true))
	testutil.MaybeFail("match", testutil.Expect(Match("a.avsc", "?.avsc"), true))
	testutil.MaybeFail("match", testutil.Expect(Match("ab.avsc", "?.avsc"), false))
	testutil.MaybeFail("match", testutil.Expect(Match("xavsc", "x.avsc"), false))
	testutil.MaybeFail("match", testutil.Expect(Match("x/a.avsc", "*.avsc"), false))
	testutil.MaybeFail("match", testutil.Expect(Match("x/a.avsc", "*/*.avsc"), true))
	testutil.MaybeFail("match", testutil.Expect(Match("a.avsc", "**/*.avsc"), true))
	testutil.MaybeFail("match", testutil.Expect(Match("x/a.avsc", "**/*.avsc"), true))
	testutil.MaybeFail("match", testutil.Expect(Match("x/y/a.avsc", "**/*.avsc"), true))
	testutil.MaybeFail("match", testutil.Expect(Match("x/y/a.avsc", "x/**"), true))
	testutil.MaybeFail("match", testutil.Expect(Match("x/y/a.avsc", "x/"), true))
	testutil.MaybeFail("match", testutil.Expect(Match("z/y/a.avsc", "x/**"), false))
	testutil.MaybeFail("match", testutil.Expect(Match("x/y/a.avsc", "x/**/a.avsc"), true))
	testutil.MaybeFail("match", testutil.Expect(Match("x/a.avsc", "x/**/a.avsc"), true))
	testutil.MaybeFail("match", testutil.Expect(Match("x/a.avsc", "x\\*.avsc"), true))
	testutil.MaybeFail("match", testutil.Expect(Match("a+b.avsc", "a+b.avsc"), true))
	testutil.MaybeFail("match", testutil.Expect(Match("aab.avsc", "a+b.avsc"), false))
	testutil.MaybeFail("match", testutil.Expect(Match("[x].avsc", "[x].avsc"), true))
}
