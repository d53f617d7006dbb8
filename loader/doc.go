// Package loader reads schema declarations from XML or YAML and builds a
// schema.Schema.
//
// The XML dialect is the one hardware description files use:
//
//	<agxml>
//	  <enum name="Wrap">
//	    <value name="Repeat" value="0"/>
//	  </enum>
//	  <struct name="Sampler" size="8" align="16">
//	    <field name="Wrap S" start="0" size="3" type="Wrap" default="Repeat"/>
//	    <field name="Mode" start="1:16" size="2" type="uint" prefix="Mode">
//	      <value name="Fast" value="1"/>
//	    </field>
//	  </struct>
//	</agxml>
//
// The YAML form carries the same attributes under "enums" and "structs"
// lists. Numeric attributes keep their source text, so both front ends apply
// the same literal rules.
package loader
