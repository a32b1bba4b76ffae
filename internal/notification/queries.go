package notification

import "github.com/dxgrid/acl-notify/internal/domain"

// Both statements are opaque to the pipeline: it binds
// (requesterId, resourceServerUrl) positionally and consumes whatever
// column aliases come back. The aliases are the column contract the
// assembler strips and replaces.

// GetConsumerNotificationQuery lists the requests the caller issued;
// the counterpart columns describe the owner of the requested item.
const GetConsumerNotificationQuery = `
SELECT R._id AS "requestId",
       R.item_id AS "itemId",
       R.item_type AS "itemType",
       R.status AS "status",
       R.constraints AS "constraints",
       R.expiry_at AS "expiryAt",
       R.user_id AS "consumerId",
       R.owner_id AS "ownerId",
       U.first_name AS "ownerFirstName",
       U.last_name AS "ownerLastName",
       U.email_id AS "ownerEmailId",
       R.created_at AS "requestedAt",
       R.updated_at AS "updatedAt"
FROM request AS R
         INNER JOIN user_table AS U ON R.owner_id = U._id
WHERE R.user_id = $1
  AND R.resource_server_url = $2
ORDER BY R.updated_at DESC`

// GetProviderNotificationQuery lists the requests addressed to the
// caller; the counterpart columns describe the requesting consumer.
const GetProviderNotificationQuery = `
SELECT R._id AS "requestId",
       R.item_id AS "itemId",
       R.item_type AS "itemType",
       R.status AS "status",
       R.constraints AS "constraints",
       R.expiry_at AS "expiryAt",
       R.user_id AS "consumerId",
       R.owner_id AS "ownerId",
       U.first_name AS "consumerFirstName",
       U.last_name AS "consumerLastName",
       U.email_id AS "consumerEmailId",
       R.created_at AS "requestedAt",
       R.updated_at AS "updatedAt"
FROM request AS R
         INNER JOIN user_table AS U ON R.user_id = U._id
WHERE R.owner_id = $1
  AND R.resource_server_url = $2
ORDER BY R.updated_at DESC`

func queryForPerspective(p domain.Perspective) string {
	if p == domain.PerspectiveConsumer {
		return GetConsumerNotificationQuery
	}
	return GetProviderNotificationQuery
}
