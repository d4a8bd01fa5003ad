/*
 * Copyright (c) 2026, WSO2 LLC. (http://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

package service

import "strings"

// NormalizeEmail lowercases and trims an email address so matching is
// case-insensitive and exact. Returns "" for values that cannot be an email.
func NormalizeEmail(email string) string {

	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return ""
	}
	return email
}

// NormalizePhone converts a phone number to E.164. Numbers without a country
// code are assumed NANP when they carry exactly ten digits. Returns "" for
// values that cannot be normalized; such records fall back to their other
// identifiers.
func NormalizePhone(phone string) string {

	phone = strings.TrimSpace(phone)
	if phone == "" {
		return ""
	}

	hasPlus := strings.HasPrefix(phone, "+")
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	number := digits.String()

	switch {
	case hasPlus:
		// Already carries a country code.
	case len(number) == 10:
		number = "1" + number
	case len(number) == 11 && strings.HasPrefix(number, "1"):
		// NANP with country code but no plus.
	default:
		if len(number) < 11 || len(number) > 15 {
			return ""
		}
	}

	if len(number) < 8 || len(number) > 15 {
		return ""
	}
	return "+" + number
}
