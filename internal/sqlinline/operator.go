// Package sqlinline holds the marker-tagged SQL used by the operator
// tooling. The API server goes through the repositories instead; these
// statements exist so an operator can act on accounts without it.
package sqlinline

const QSelectUserByID = `--sql select_user_by_id
SELECT id, email, banned FROM users WHERE id = $1::uuid LIMIT 1;
`

const QSelectUserByEmail = `--sql select_user_by_email
SELECT id, email, banned FROM users WHERE email = lower($1) LIMIT 1;
`

const QGrantRole = `--sql grant_role
INSERT INTO user_roles (user_id, role, granted_at)
VALUES ($1::uuid, $2, NOW())
ON CONFLICT (user_id, role) DO UPDATE SET granted_at = NOW();
`

const QRevokeRole = `--sql revoke_role
DELETE FROM user_roles WHERE user_id = $1::uuid AND role = $2;
`

const QSelectRoles = `--sql select_roles
SELECT role FROM user_roles WHERE user_id = $1::uuid ORDER BY role;
`

const QResetCredits = `--sql reset_credits
INSERT INTO user_credits (user_id, remaining, max_credits)
VALUES ($1::uuid, $2, $2)
ON CONFLICT (user_id) DO UPDATE SET remaining = user_credits.max_credits, updated_at = NOW()
RETURNING remaining, max_credits;
`
