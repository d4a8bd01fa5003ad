/*
 * Copyright (c) 2025, WSO2 LLC. (http://www.wso2.com).
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

package errors

const errorPrefix = "RSS-"

var (
	// Server error codes

	DB_CLIENT_INIT = ErrorMessage{
		Code:    errorPrefix + "15001",
		Message: "Unable to initialize database client.",
	}

	MARSHAL_JSON = ErrorMessage{
		Code:    errorPrefix + "15002",
		Message: "Error while marshalling JSON.",
	}

	UNMARSHAL_JSON = ErrorMessage{
		Code:    errorPrefix + "15003",
		Message: "Error while un-marshalling JSON.",
	}

	ADD_SYNC_RUN = ErrorMessage{
		Code:    errorPrefix + "15004",
		Message: "Error while creating sync run.",
	}

	GET_SYNC_RUN = ErrorMessage{
		Code:    errorPrefix + "15005",
		Message: "Error while fetching sync run(s).",
	}

	UPDATE_SYNC_RUN = ErrorMessage{
		Code:    errorPrefix + "15006",
		Message: "Error while updating sync run.",
	}

	REAP_SYNC_RUNS = ErrorMessage{
		Code:    errorPrefix + "15007",
		Message: "Error while reaping stale sync runs.",
	}

	ADD_CUSTOMER = ErrorMessage{
		Code:    errorPrefix + "15008",
		Message: "Error while adding customer.",
	}

	GET_CUSTOMER = ErrorMessage{
		Code:    errorPrefix + "15009",
		Message: "Error while fetching customer(s).",
	}

	UPDATE_CUSTOMER = ErrorMessage{
		Code:    errorPrefix + "15010",
		Message: "Error while updating customer.",
	}

	BIND_EXTERNAL_IDENTITY = ErrorMessage{
		Code:    errorPrefix + "15011",
		Message: "Error while binding external identity.",
	}

	ADD_MERGE_CONFLICT = ErrorMessage{
		Code:    errorPrefix + "15012",
		Message: "Error while recording merge conflict.",
	}

	GET_MERGE_CONFLICT = ErrorMessage{
		Code:    errorPrefix + "15013",
		Message: "Error while fetching merge conflict(s).",
	}

	RESOLVE_MERGE_CONFLICT = ErrorMessage{
		Code:    errorPrefix + "15014",
		Message: "Error while resolving merge conflict.",
	}

	STAGE_RECORD = ErrorMessage{
		Code:    errorPrefix + "15015",
		Message: "Error while staging raw record.",
	}

	FETCH_PAGE = ErrorMessage{
		Code:    errorPrefix + "15016",
		Message: "Error while fetching page from source.",
	}

	MERGE_RECORD = ErrorMessage{
		Code:    errorPrefix + "15017",
		Message: "Error while merging record.",
	}

	LOAD_PRECEDENCE = ErrorMessage{
		Code:    errorPrefix + "15018",
		Message: "Error while loading source precedence configuration.",
	}

	ADD_API_KEY = ErrorMessage{
		Code:    errorPrefix + "15019",
		Message: "Error while adding API key.",
	}

	GET_API_KEY = ErrorMessage{
		Code:    errorPrefix + "15020",
		Message: "Error while fetching API key.",
	}

	// Client error codes

	ErrBadRequest = ErrorMessage{
		Code:    errorPrefix + "11001",
		Message: "Invalid request format.",
	}

	ErrRunAlreadyRunning = ErrorMessage{
		Code:    errorPrefix + "11002",
		Message: "A sync run is already active for this source.",
	}

	ErrRunNotFound = ErrorMessage{
		Code:    errorPrefix + "11003",
		Message: "Sync run not found.",
	}

	ErrRunTerminal = ErrorMessage{
		Code:    errorPrefix + "11004",
		Message: "Sync run is already in a terminal state.",
	}

	ErrUnknownSource = ErrorMessage{
		Code:    errorPrefix + "11005",
		Message: "Unknown sync source.",
	}

	ErrCustomerNotFound = ErrorMessage{
		Code:    errorPrefix + "11006",
		Message: "Customer not found.",
	}

	ErrConflictNotFound = ErrorMessage{
		Code:    errorPrefix + "11007",
		Message: "Merge conflict not found.",
	}

	ErrConflictAlreadyResolved = ErrorMessage{
		Code:    errorPrefix + "11008",
		Message: "Merge conflict is already resolved.",
	}

	ErrInvalidResolution = ErrorMessage{
		Code:    errorPrefix + "11009",
		Message: "Invalid conflict resolution action.",
	}

	ErrInvalidCursor = ErrorMessage{
		Code:    errorPrefix + "11010",
		Message: "Invalid pagination cursor.",
	}

	ErrUnauthorized = ErrorMessage{
		Code:    errorPrefix + "11011",
		Message: "Authentication failed.",
	}

	ErrCheckpointMismatch = ErrorMessage{
		Code:    errorPrefix + "11012",
		Message: "Supplied cursor or run does not match the persisted checkpoint.",
	}
)
