package adldap

import (
	"context"

	"github.com/go-ldap/ldap/v3"
)

// Add creates a new directory object.
func (c *Client) Add(ctx context.Context, req *AddRequest) error {
	if req == nil || req.DN == "" {
		return newErr(KindConfig, "Add", "DN cannot be empty", nil)
	}
	conn, key, err := c.connFor(ctx, req.DN, "", SchemeLDAP)
	if err != nil {
		return err
	}

	ldapReq := ldap.NewAddRequest(req.DN, nil)
	for _, attr := range req.Attributes {
		ldapReq.Attribute(attr.Type, attr.Values)
	}
	if err := withRetry(ctx, func() error { return conn.Add(ldapReq) }); err != nil {
		c.pool.drop(key)
		return wrapLDAP("Add", err)
	}
	return nil
}

// Modify applies a list of (op, type, values) modifications to an
// existing directory object.
func (c *Client) Modify(ctx context.Context, req *ModifyRequest) error {
	if req == nil || req.DN == "" {
		return newErr(KindConfig, "Modify", "DN cannot be empty", nil)
	}
	conn, key, err := c.connFor(ctx, req.DN, "", SchemeLDAP)
	if err != nil {
		return err
	}

	ldapReq := ldap.NewModifyRequest(req.DN, nil)
	for _, mod := range req.Mods {
		switch mod.Op {
		case ModAdd:
			ldapReq.Add(mod.Type, mod.Values)
		case ModReplace:
			ldapReq.Replace(mod.Type, mod.Values)
		case ModDelete:
			ldapReq.Delete(mod.Type, mod.Values)
		default:
			return newErr(KindConfig, "Modify", "unknown modify operation", nil)
		}
	}
	if err := withRetry(ctx, func() error { return conn.Modify(ldapReq) }); err != nil {
		c.pool.drop(key)
		return wrapLDAP("Modify", err)
	}
	return nil
}

// Delete removes a directory object.
func (c *Client) Delete(ctx context.Context, dn string) error {
	if dn == "" {
		return newErr(KindConfig, "Delete", "DN cannot be empty", nil)
	}
	conn, key, err := c.connFor(ctx, dn, "", SchemeLDAP)
	if err != nil {
		return err
	}
	delReq := ldap.NewDelRequest(dn, nil)
	if err := withRetry(ctx, func() error { return conn.Del(delReq) }); err != nil {
		c.pool.drop(key)
		return wrapLDAP("Delete", err)
	}
	return nil
}

// Rename is the general move/rename form; passing NewSuperior == ""
// degenerates to a plain modrdn.
func (c *Client) Rename(ctx context.Context, req *RenameRequest) error {
	if req == nil || req.DN == "" || req.NewRDN == "" {
		return newErr(KindConfig, "Rename", "DN and new RDN are required", nil)
	}
	conn, key, err := c.connFor(ctx, req.DN, "", SchemeLDAP)
	if err != nil {
		return err
	}
	ldapReq := ldap.NewModifyDNRequest(req.DN, req.NewRDN, req.DeleteOldRDN, req.NewSuperior)
	if err := withRetry(ctx, func() error { return conn.ModifyDN(ldapReq) }); err != nil {
		c.pool.drop(key)
		return wrapLDAP("Rename", err)
	}
	return nil
}

// ModRDN is Rename with no superior change.
func (c *Client) ModRDN(ctx context.Context, dn, newRDN string, deleteOldRDN bool) error {
	return c.Rename(ctx, &RenameRequest{DN: dn, NewRDN: newRDN, DeleteOldRDN: deleteOldRDN})
}
